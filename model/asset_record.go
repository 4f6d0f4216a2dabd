package model

import "strings"

// Defaults applied when upstream metadata omits a field
const (
	DefaultLicenseType      = "custom"
	DefaultProtectionStatus = "Protected"
	UnknownValue            = "Unknown"
	DefaultContentType      = "image"
)

// AssetRecord canonical, renderable view of one token
type AssetRecord struct {
	ID              string       `json:"id"`              // <lower-case contract>:<decimal token id>
	ContractAddress string       `json:"contractAddress"` // Checksummed contract address
	TokenID         string       `json:"tokenId"`         // Decimal token id
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	Description     string       `json:"description"`
	ContentType     string       `json:"contentType"` // image/audio/video/text/...
	Collection      string       `json:"collection"`
	Tags            []string     `json:"tags"`
	MediaURL        string       `json:"mediaUrl"` // Always http(s) fetchable
	License         License      `json:"license"`
	Protection      Protection   `json:"protection"`
	Creator         Creator      `json:"creator"`
	Owner           string       `json:"owner,omitempty"`
	Attributes      []Trait      `json:"attributes"`  // Ordered as they appeared upstream
	MetadataURI     string       `json:"metadataUri"` // Raw token URI as read from chain
	File            *FileDetails `json:"file,omitempty"`
}

// License usage terms
type License struct {
	Type          string `json:"type"`
	Details       string `json:"details,omitempty"`
	Attribution   bool   `json:"attribution"`
	CommercialUse bool   `json:"commercialUse"`
	Modifications bool   `json:"modifications"`
}

// Protection registration status
type Protection struct {
	Status           string `json:"status"`
	Scope            string `json:"scope"`
	Duration         string `json:"duration"`
	RegistrationDate string `json:"registrationDate"`
}

// Creator who minted or authored the asset
type Creator struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
	Website string `json:"website,omitempty"`
}

// Trait single name/value attribute
type Trait struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileDetails technical facts about the media file
type FileDetails struct {
	Size       string `json:"size,omitempty"`
	Format     string `json:"format,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
}

// AssetKey identifies one token
type AssetKey struct {
	Contract string `json:"contract"`
	TokenID  string `json:"tokenId"` // Decimal
}

// ID deterministic record identifier
func (k AssetKey) ID() string {
	return strings.ToLower(k.Contract) + ":" + k.TokenID
}

// TraitValue case-insensitive attribute lookup
func (r *AssetRecord) TraitValue(name string) (string, bool) {
	for _, t := range r.Attributes {
		if strings.EqualFold(t.Name, name) {
			return t.Value, true
		}
	}
	return "", false
}
