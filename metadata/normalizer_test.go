package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"asset-aggregator/model"
)

var testKey = model.AssetKey{Contract: "0xAbC0000000000000000000000000000000000001", TokenID: "7"}

func TestNormalizeEmptyDocument(t *testing.T) {
	n := NewNormalizer(DefaultGateway)
	rec := n.Normalize(nil, Input{Key: testKey, Owner: "0xowner", MetadataURI: "ipfs://x"})

	require.Equal(t, "0xabc0000000000000000000000000000000000001:7", rec.ID)
	require.Equal(t, "#7", rec.Title)
	require.Equal(t, model.UnknownValue, rec.Author)
	require.Equal(t, model.DefaultLicenseType, rec.License.Type)
	require.True(t, rec.License.Attribution)
	require.False(t, rec.License.CommercialUse)
	require.False(t, rec.License.Modifications)
	require.Equal(t, model.DefaultProtectionStatus, rec.Protection.Status)
	require.Equal(t, model.UnknownValue, rec.Protection.RegistrationDate)
	require.Equal(t, model.DefaultContentType, rec.ContentType)
	require.Equal(t, "0xowner", rec.Creator.Address)
	require.Equal(t, "0xowner", rec.Owner)
	require.Empty(t, rec.Attributes)
	require.NotNil(t, rec.Tags)
	require.Nil(t, rec.File)
}

func TestNormalizeFieldPriority(t *testing.T) {
	raw := map[string]any{
		"NAME":  "Top Level Title",
		"Image": "ipfs://" + cidV0,
		"attributes": []any{
			map[string]any{"trait_type": "Title", "value": "Trait Title"},
			map[string]any{"Trait_Type": "AUTHOR", "value": "Trait Author"},
			map[string]any{"trait_type": "Commercial Use", "value": "yes"},
			map[string]any{"trait_type": "Registration Date", "value": "2024-03-05T10:00:00Z"},
			map[string]any{"trait_type": "Edition", "value": float64(3)},
			"garbage",
		},
		"properties": map[string]any{
			"Author":           "Property Author",
			"License":          "CC-BY-4.0",
			"Protection_Scope": "Worldwide",
		},
	}
	rec := NewNormalizer(DefaultGateway).Normalize(raw, Input{Key: testKey})

	require.Equal(t, "Top Level Title", rec.Title)
	require.Equal(t, "Trait Author", rec.Author)
	require.Equal(t, "CC-BY-4.0", rec.License.Type)
	require.True(t, rec.License.CommercialUse)
	require.Equal(t, "Worldwide", rec.Protection.Scope)
	require.Equal(t, "2024-03-05", rec.Protection.RegistrationDate)
	require.Equal(t, "https://ipfs.io/ipfs/"+cidV0, rec.MediaURL)
	require.Equal(t, []model.Trait{
		{Name: "Title", Value: "Trait Title"},
		{Name: "AUTHOR", Value: "Trait Author"},
		{Name: "Commercial Use", Value: "yes"},
		{Name: "Registration Date", Value: "2024-03-05T10:00:00Z"},
		{Name: "Edition", Value: "3"},
	}, rec.Attributes)
	v, ok := rec.TraitValue("edition")
	require.True(t, ok)
	require.Equal(t, "3", v)
}

func TestNormalizeCoercesLooseValues(t *testing.T) {
	raw := map[string]any{
		"name":              "Song",
		"animation_url":     "https://cdn.example.com/track.mp3?v=2",
		"attribution":       "nonsense",
		"modifications":     true,
		"registration_date": "not a date",
		"tags":              "lofi, chill , ,beats",
		"license":           map[string]any{"type": "Exclusive", "commercial_use": "true"},
		"creator":           map[string]any{"name": "DJ", "address": "0x1111111111111111111111111111111111111111"},
		"properties": map[string]any{
			"files": []any{map[string]any{"type": "audio/mpeg", "size": float64(1024)}},
		},
		"attributes": map[string]any{"mood": "calm"},
	}
	rec := NewNormalizer(DefaultGateway).Normalize(raw, Input{Key: testKey, Collection: "Mixtapes"})

	require.True(t, rec.License.Attribution)
	require.True(t, rec.License.Modifications)
	require.True(t, rec.License.CommercialUse)
	require.Equal(t, "Exclusive", rec.License.Type)
	require.Equal(t, model.UnknownValue, rec.Protection.RegistrationDate)
	require.Equal(t, []string{"lofi", "chill", "beats"}, rec.Tags)
	require.Equal(t, "audio", rec.ContentType)
	require.Equal(t, "Mixtapes", rec.Collection)
	require.Equal(t, "DJ", rec.Creator.Name)
	require.Equal(t, "0x1111111111111111111111111111111111111111", rec.Creator.Address)
	require.NotNil(t, rec.File)
	require.Equal(t, "1024", rec.File.Size)
	require.Equal(t, "audio/mpeg", rec.File.Format)
	require.Equal(t, []model.Trait{{Name: "mood", Value: "calm"}}, rec.Attributes)
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate(float64(1700000000))
	require.True(t, ok)
	require.Equal(t, "2023-11-14", d)

	d, ok = parseDate("1700000000000")
	require.True(t, ok)
	require.Equal(t, "2023-11-14", d)

	_, ok = parseDate("yesterday")
	require.False(t, ok)
	_, ok = parseDate(nil)
	require.False(t, ok)
}
