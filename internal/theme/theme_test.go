package theme

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/storage"
)

func TestParse(t *testing.T) {
	assert.Equal(t, Dark, Parse("dark"))
	assert.Equal(t, Light, Parse("light"))
	assert.Equal(t, Light, Parse(""))
	assert.Equal(t, Light, Parse("DARK"))
}

func TestToggle(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Dark.Toggle())
}

func TestSaveAndLoad(t *testing.T) {
	kv := storage.NewMemory()

	n, err := Load(kv)
	require.NoError(t, err)
	assert.Equal(t, Light, n)

	require.NoError(t, Save(kv, Dark))
	raw, _, _ := kv.Load(StorageKey)
	assert.Equal(t, "dark", raw)

	n, err = Load(kv)
	require.NoError(t, err)
	assert.Equal(t, Dark, n)
}

type brokenKV struct{}

func (brokenKV) Load(string) (string, bool, error) { return "", false, errors.New("locked") }
func (brokenKV) Save(string, string) error         { return errors.New("locked") }

func TestLoadErrorDefaultsToLight(t *testing.T) {
	n, err := Load(brokenKV{})
	assert.Error(t, err)
	assert.Equal(t, Light, n)
}

func TestForPicksStyleSet(t *testing.T) {
	assert.Equal(t, Dark, For(Dark).Name)
	assert.Equal(t, Light, For(Light).Name)
	assert.Equal(t, Light, For("").Name)

	th := For(Dark)
	assert.Equal(t, th.Tags["work"], th.Tag("work"))
	assert.Equal(t, th.Muted, th.Tag("unknown"))
}
