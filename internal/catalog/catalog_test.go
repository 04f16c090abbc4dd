package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helixcatalog/internal/config"
	"helixcatalog/internal/container"
	"helixcatalog/internal/models"
	"helixcatalog/internal/preset"
)

const testAnnotations = `
presets:
- name: Brit Crunch
  decoded: Marshall Plexi Crunch
  description: A plexi at full tilt.
  artists: [Angus]
  genres: [Hard Rock, Classic Rock]
  pickup: {type: Humbucker, position: Bridge}
- name: Clean Dream
  genres: [Ambient]
  pickup: {type: Either, position: Neck, notes: Warm.}
- name: New Preset
  artists: [Nobody]
`

func mustPreset(t *testing.T, index int, name string, dsp0 string) *preset.Preset {
	t.Helper()
	meta, err := json.Marshal(map[string]string{"name": name})
	require.NoError(t, err)
	rec := container.Record{
		Meta: meta,
		Tone: json.RawMessage(`{"dsp0":` + dsp0 + `}`),
	}
	return preset.Decode(index, rec, models.Default())
}

func mustAnnotations(t *testing.T) *Annotations {
	t.Helper()
	a, err := LoadAnnotations(strings.NewReader(testAnnotations))
	require.NoError(t, err)
	return a
}

func testSetlists(t *testing.T) []Setlist {
	twoPlexis := `{
		"a": {"@model": "HD2_AmpBritPlexiBrt", "@position": 1},
		"b": {"@model": "HD2_AmpBritPlexiBrt", "@position": 2, "@path": 1},
		"c": {"@model": "HD2_AmpSomethingNew", "@position": 3}
	}`
	return []Setlist{
		{Name: "My Gigs", Presets: []*preset.Preset{
			mustPreset(t, 0, " Brit Crunch ", twoPlexis),
			mustPreset(t, 1, "New Preset", twoPlexis),
			mustPreset(t, 2, "Clean Dream", `{}`),
			mustPreset(t, 3, "Unlisted", `{"a":{"@model":"HD2_AmpBritPlexiBrt"}}`),
		}},
		{Name: "Second Set", Presets: []*preset.Preset{
			mustPreset(t, 4, "Brit Crunch", `{}`),
		}},
	}
}

func TestBuildPrimaryCatalog(t *testing.T) {
	c := Build(testSetlists(t), mustAnnotations(t))

	var labels []string
	for _, it := range c.Presets {
		labels = append(labels, it.Anchor)
	}
	assert.Equal(t, []string{"MyGigs-01A", "MyGigs-01C", "MyGigs-01D", "SecondSet-02A"}, labels)

	first := c.Presets[0]
	assert.Equal(t, "Brit Crunch", first.Name)
	assert.Equal(t, "Marshall Plexi Crunch", first.Decoded)
	assert.Equal(t, "A plexi at full tilt.", first.Description)
	assert.Equal(t, &Pickup{Type: "Humbucker", Position: "Bridge"}, first.Pickup)
	assert.Equal(t, config.CatchAllTitle, first.Group)

	unlisted := c.Presets[2]
	assert.Equal(t, "Unlisted", unlisted.Decoded)
	assert.Equal(t, config.DefaultDescription, unlisted.Description)
	assert.Nil(t, unlisted.Pickup)
}

func TestBuildHardwareIndex(t *testing.T) {
	c := Build(testSetlists(t), mustAnnotations(t))

	require.Equal(t, 1, c.Hardware.Len(), "fallback resolutions are not indexed")
	hw := Keys(c.Hardware)[0]
	assert.Contains(t, hw, "Marshall")

	entries, _ := c.Hardware.Get(hw)
	want := []Entry{
		{Setlist: "My Gigs", Label: "01A", Name: "Brit Crunch", Anchor: "MyGigs-01A"},
		{Setlist: "My Gigs", Label: "01D", Name: "Unlisted", Anchor: "MyGigs-01D"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("hardware entries mismatch (-want +got):\n%s", diff)
	}

	makers, ok := c.Manufacturers.Get("Marshall")
	require.True(t, ok)
	assert.Equal(t, []string{hw}, makers)
}

func TestBuildAnnotationIndices(t *testing.T) {
	c := Build(testSetlists(t), mustAnnotations(t))

	assert.Equal(t, []string{"Angus"}, Keys(c.Artists), "placeholder annotations are never indexed")
	assert.Equal(t, []string{"Hard Rock", "Classic Rock", "Ambient"}, Keys(c.Genres))

	rock, _ := c.Genres.Get("Hard Rock")
	require.Len(t, rock, 2)
	assert.Equal(t, "MyGigs-01A", rock[0].Anchor)
	assert.Equal(t, "SecondSet-02A", rock[1].Anchor)

	assert.Equal(t, []string{"Humbucker", "Either"}, Keys(c.Pickups))
	either, _ := c.Pickups.Get("Either")
	neck, ok := either.Get("Neck")
	require.True(t, ok)
	assert.Equal(t, "Clean Dream", neck[0].Name)
}

func TestBuildRepeatedAnnotationValues(t *testing.T) {
	ann, err := LoadAnnotations(strings.NewReader(`
presets:
- name: Brit Crunch
  artists: [Angus, " Angus ", Malcolm, ""]
  genres: [Hard Rock, Hard Rock]
`))
	require.NoError(t, err)
	sets := []Setlist{{Name: "My Gigs", Presets: []*preset.Preset{mustPreset(t, 0, "Brit Crunch", `{}`)}}}

	c := Build(sets, ann)

	assert.Equal(t, []string{"Angus", "Malcolm"}, Keys(c.Artists))
	angus, _ := c.Artists.Get("Angus")
	assert.Len(t, angus, 1)
	rock, _ := c.Genres.Get("Hard Rock")
	assert.Len(t, rock, 1)
	assert.Equal(t, []string{"Angus", "Malcolm"}, c.Presets[0].Artists)
	assert.Equal(t, []string{"Hard Rock"}, c.Presets[0].Genres)
}

func TestPlaceholderNeverIndexed(t *testing.T) {
	c := Build(testSetlists(t), mustAnnotations(t))
	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "MyGigs-01B")
}

func TestBuildCustomPlaceholder(t *testing.T) {
	cfg, err := config.Parse([]byte(`placeholders = ["Unlisted"]`), "test.hcl")
	require.NoError(t, err)

	c := Build(testSetlists(t), mustAnnotations(t), WithConfig(cfg))
	var names []string
	for _, it := range c.Presets {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Brit Crunch", "New Preset", "Clean Dream", "Brit Crunch"}, names)
}

func TestBuildWithoutAnnotations(t *testing.T) {
	c := Build(testSetlists(t), nil)
	assert.Len(t, c.Presets, 4)
	assert.Zero(t, c.Artists.Len())
	assert.Zero(t, c.Genres.Len())
	assert.Zero(t, c.Pickups.Len())
	assert.Equal(t, 1, c.Hardware.Len())
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := json.Marshal(Build(testSetlists(t), mustAnnotations(t)))
	require.NoError(t, err)
	b, err := json.Marshal(Build(testSetlists(t), mustAnnotations(t)))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, string(a), string(b))
}

func TestLookup(t *testing.T) {
	c := Build(testSetlists(t), mustAnnotations(t))

	it, ok := c.Lookup("my gigs", "01c")
	require.True(t, ok)
	assert.Equal(t, "Clean Dream", it.Name)

	_, ok = c.Lookup("My Gigs", "01B")
	assert.False(t, ok)
}

func TestAnchor(t *testing.T) {
	assert.Equal(t, "FACTORY1-01A", Anchor("FACTORY 1", "01A"))
	assert.Equal(t, "ab-32D", Anchor(" a\tb ", "32D"))
}

func TestDefaultAnnotations(t *testing.T) {
	a := DefaultAnnotations()
	assert.Greater(t, a.Len(), 200)

	ann, ok := a.Lookup("Brit Plexi Brt")
	require.True(t, ok)
	assert.Contains(t, ann.Decoded, "Marshall")
	require.NotNil(t, ann.Pickup)
	assert.Equal(t, "Humbucker", ann.Pickup.Type)

	_, ok = a.Lookup("Eat lt")
	assert.True(t, ok, "names are trimmed on load")
}

func TestLoadAnnotationsErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"no name":     "presets:\n- decoded: x\n",
		"bad pickup":  "presets:\n- name: a\n  pickup: {type: Humbucker}\n",
		"not a table": "presets: 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAnnotations(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	a, err := LoadAnnotations(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, a.Len())
}
