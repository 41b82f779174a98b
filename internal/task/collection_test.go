package task

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type memKV struct {
	m       map[string]string
	saves   int
	failErr error
}

func newMemKV() *memKV { return &memKV{m: map[string]string{}} }

func (k *memKV) Load(key string) (string, bool, error) {
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Save(key, value string) error {
	if k.failErr != nil {
		return k.failErr
	}
	k.saves++
	k.m[key] = value
	return nil
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

type CollectionSuite struct {
	suite.Suite
	kv    *memKV
	clock *fixedClock
	c     *Collection
}

func (s *CollectionSuite) SetupTest() {
	s.kv = newMemKV()
	s.clock = &fixedClock{t: time.UnixMilli(1_700_000_000_000)}
	s.c = NewCollection(s.kv, WithClock(s.clock.now))
	s.Require().NoError(s.c.Load())
}

func (s *CollectionSuite) reload() *Collection {
	fresh := NewCollection(s.kv)
	s.Require().NoError(fresh.Load())
	return fresh
}

func (s *CollectionSuite) TestAddAssignsTimestampIDAndDefaults() {
	t, err := s.c.Add("  Buy milk ", " 2% ", NewDate(2024, time.January, 1), CategoryErrand)
	s.Require().NoError(err)

	s.Equal(int64(1_700_000_000_000), t.ID)
	s.Equal("Buy milk", t.Title)
	s.Equal("2%", t.Description)
	s.False(t.Completed)
	s.Equal(1, s.c.Len())
	s.Equal(1, s.kv.saves)
}

func (s *CollectionSuite) TestAddRejectsBlankTitle() {
	_, err := s.c.Add("   ", "", Date{}, CategoryWork)
	s.ErrorIs(err, ErrEmptyTitle)
	s.Zero(s.c.Len())
	s.Zero(s.kv.saves)
}

func (s *CollectionSuite) TestAddNeverReusesAnID() {
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		t, err := s.c.Add("same millisecond", "", Date{}, CategoryOther)
		s.Require().NoError(err)
		s.False(seen[t.ID], "id %d reused", t.ID)
		seen[t.ID] = true
	}

	// clock going backwards still yields a fresh id
	s.clock.t = s.clock.t.Add(-time.Hour)
	t, err := s.c.Add("earlier", "", Date{}, CategoryOther)
	s.Require().NoError(err)
	s.False(seen[t.ID])
}

func (s *CollectionSuite) TestUpdateKeepsIDAndCompleted() {
	orig, err := s.c.Add("Buy milk", "", NewDate(2024, time.January, 1), CategoryErrand)
	s.Require().NoError(err)
	_, err = s.c.SetCompleted(orig.ID, true)
	s.Require().NoError(err)

	updated, err := s.c.Update(orig.ID, "Buy oat milk", "2%", Date{}, CategoryShopping)
	s.Require().NoError(err)

	s.Equal(orig.ID, updated.ID)
	s.True(updated.Completed)
	s.Equal("Buy oat milk", updated.Title)
	s.Equal("2%", updated.Description)
	s.True(updated.DueDate.IsZero())
	s.Equal(CategoryShopping, updated.Category)
}

func (s *CollectionSuite) TestUpdateMissingIDIsNotFound() {
	_, err := s.c.Add("only", "", Date{}, CategoryWork)
	s.Require().NoError(err)
	before := s.c.All()
	saves := s.kv.saves

	_, err = s.c.Update(42, "ghost", "", Date{}, CategoryWork)
	s.ErrorIs(err, ErrNotFound)
	s.Equal(before, s.c.All())
	s.Equal(saves, s.kv.saves)
}

func (s *CollectionSuite) TestSetCompletedRoundTrip() {
	t, err := s.c.Add("toggle me", "", Date{}, CategoryPersonal)
	s.Require().NoError(err)

	_, err = s.c.SetCompleted(t.ID, true)
	s.Require().NoError(err)
	_, err = s.c.SetCompleted(t.ID, false)
	s.Require().NoError(err)

	got, ok := s.c.Get(t.ID)
	s.True(ok)
	s.Equal(t.Completed, got.Completed)

	_, err = s.c.SetCompleted(t.ID+1000, true)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CollectionSuite) TestRemove() {
	a, _ := s.c.Add("a", "", Date{}, CategoryWork)
	s.clock.t = s.clock.t.Add(time.Second)
	b, _ := s.c.Add("b", "", Date{}, CategoryWork)

	s.Require().NoError(s.c.Remove(a.ID))
	_, ok := s.c.Get(a.ID)
	s.False(ok)
	s.Equal([]Task{b}, s.c.All())

	s.Require().NoError(s.c.Remove(a.ID))
	s.Equal([]Task{b}, s.c.All())
}

func (s *CollectionSuite) TestPersistedFormReloadsIdentically() {
	a, _ := s.c.Add("Buy milk", "", NewDate(2024, time.January, 1), CategoryErrand)
	s.clock.t = s.clock.t.Add(time.Minute)
	b, _ := s.c.Add("Write report", "Q3 numbers", NewDate(2024, time.March, 15), CategoryWork)
	s.clock.t = s.clock.t.Add(time.Minute)
	c, _ := s.c.Add("Call mom", "", Date{}, CategoryPersonal)

	_, err := s.c.Update(b.ID, "Write the report", "Q3", NewDate(2024, time.March, 16), CategoryWork)
	s.Require().NoError(err)
	_, err = s.c.SetCompleted(c.ID, true)
	s.Require().NoError(err)
	s.Require().NoError(s.c.Remove(a.ID))

	s.Equal(s.c.All(), s.reload().All())
}

func (s *CollectionSuite) TestRemovingEverythingReloadsEmpty() {
	t, _ := s.c.Add("only", "", Date{}, CategoryWork)
	s.Require().NoError(s.c.Remove(t.ID))

	s.Equal("[]", s.kv.m[StorageKey])
	s.Empty(s.reload().All())
}

func (s *CollectionSuite) TestFailedSaveLeavesMemoryUntouched() {
	t, err := s.c.Add("keep", "", Date{}, CategoryWork)
	s.Require().NoError(err)
	before := s.c.All()

	s.kv.failErr = errors.New("disk full")
	_, err = s.c.Add("lost", "", Date{}, CategoryWork)
	s.ErrorIs(err, s.kv.failErr)
	_, err = s.c.SetCompleted(t.ID, true)
	s.Error(err)
	s.Error(s.c.Remove(t.ID))

	s.Equal(before, s.c.All())
}

func TestCollectionSuite(t *testing.T) {
	suite.Run(t, new(CollectionSuite))
}

func TestLoadFallsBackToEmpty(t *testing.T) {
	cases := map[string]string{
		"malformed": `{not json`,
		"blank":     `   `,
		"wrongType": `{"id":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			kv := newMemKV()
			kv.m[StorageKey] = raw
			c := NewCollection(kv)
			require.NoError(t, c.Load())
			assert.Zero(t, c.Len())
		})
	}
}

func TestLoadReadsBrowserShape(t *testing.T) {
	kv := newMemKV()
	kv.m[StorageKey] = `[
		{"id":1704067200000,"title":"Buy milk","description":"","dueDate":"2024-01-01","category":"errand","completed":false},
		{"id":1704067300000,"title":"Gym","description":"legs","dueDate":"","category":"personal","completed":true}
	]`
	c := NewCollection(kv)
	require.NoError(t, c.Load())

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "2024-01-01", all[0].DueDate.String())
	assert.True(t, all[1].DueDate.IsZero())
	assert.True(t, all[1].Completed)
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(Task{ID: 1, Title: "x", Category: CategoryWork})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"x","description":"","dueDate":"","category":"work","completed":false}`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29T10:00:00Z"`), &d))
	assert.Equal(t, NewDate(2024, time.February, 29), d)
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Work ")
	require.NoError(t, err)
	assert.Equal(t, CategoryWork, c)

	_, err = ParseCategory("chores")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
