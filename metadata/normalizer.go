package metadata

import (
	"path"
	"sort"
	"strings"

	"asset-aggregator/model"
)

// fieldRule where to look for one canonical field, in priority order:
// top-level metadata keys, then attribute traits, then properties, then def.
type fieldRule struct {
	keys   []string
	traits []string
	props  []string
	def    string
}

var (
	titleRule       = fieldRule{keys: []string{"name", "title"}, traits: []string{"title", "name"}, props: []string{"name", "title"}}
	authorRule      = fieldRule{keys: []string{"author", "artist", "creator_name", "created_by"}, traits: []string{"author", "artist", "creator"}, props: []string{"author", "artist", "creator_name"}, def: model.UnknownValue}
	descriptionRule = fieldRule{keys: []string{"description", "desc"}, traits: []string{"description"}, props: []string{"description"}}
	contentTypeRule = fieldRule{keys: []string{"content_type", "contenttype", "media_type", "category"}, traits: []string{"content type", "type", "category", "medium"}, props: []string{"content_type", "category", "type"}}
	collectionRule  = fieldRule{keys: []string{"collection", "collection_name"}, traits: []string{"collection"}, props: []string{"collection"}}
	tagsRule        = fieldRule{keys: []string{"tags", "keywords"}, traits: []string{"tags", "keywords"}, props: []string{"tags"}}
	mediaRule       = fieldRule{keys: []string{"image", "image_url", "animation_url", "media", "media_url"}, traits: []string{"media", "image"}, props: []string{"media", "image"}}

	licenseTypeRule    = fieldRule{keys: []string{"license", "license_type"}, traits: []string{"license", "license type"}, props: []string{"license", "license_type"}, def: model.DefaultLicenseType}
	licenseDetailsRule = fieldRule{keys: []string{"license_details", "license_url", "terms"}, traits: []string{"license details", "terms"}, props: []string{"license_details", "license_url"}}
	attributionRule    = fieldRule{keys: []string{"attribution", "attribution_required"}, traits: []string{"attribution", "attribution required"}, props: []string{"attribution"}}
	commercialRule     = fieldRule{keys: []string{"commercial_use", "commercial"}, traits: []string{"commercial use", "commercial"}, props: []string{"commercial_use"}}
	modificationsRule  = fieldRule{keys: []string{"modifications", "derivatives", "allow_modifications"}, traits: []string{"modifications", "derivatives"}, props: []string{"modifications", "derivatives"}}

	protectionStatusRule = fieldRule{keys: []string{"protection_status", "ip_status"}, traits: []string{"protection status", "ip status", "status"}, props: []string{"protection_status"}, def: model.DefaultProtectionStatus}
	protectionScopeRule  = fieldRule{keys: []string{"protection_scope", "scope"}, traits: []string{"protection scope", "scope"}, props: []string{"protection_scope", "scope"}, def: model.UnknownValue}
	durationRule         = fieldRule{keys: []string{"protection_duration", "duration"}, traits: []string{"protection duration", "duration"}, props: []string{"duration"}, def: model.UnknownValue}
	registrationRule     = fieldRule{keys: []string{"registration_date", "registered_at", "created_at", "date"}, traits: []string{"registration date", "registered", "date", "created"}, props: []string{"registration_date", "created_at"}}

	creatorAddressRule = fieldRule{keys: []string{"creator_address", "artist_address", "minter"}, traits: []string{"creator address", "artist address"}, props: []string{"creator_address"}}
	creatorBioRule     = fieldRule{keys: []string{"creator_bio", "artist_bio", "bio"}, traits: []string{"bio"}, props: []string{"creator_bio"}}
	creatorAvatarRule  = fieldRule{keys: []string{"creator_avatar", "avatar"}, traits: []string{"avatar"}, props: []string{"creator_avatar"}}
	creatorWebsiteRule = fieldRule{keys: []string{"external_url", "website", "creator_website"}, traits: []string{"website"}, props: []string{"website"}}
)

// Input chain facts that accompany a metadata document
type Input struct {
	Key         model.AssetKey
	Owner       string
	MetadataURI string
	Collection  string // Configured collection name, used when the document has none
}

// Normalizer turns untyped metadata documents into AssetRecords
type Normalizer struct {
	gateway Gateway
}

func NewNormalizer(gateway Gateway) *Normalizer {
	return &Normalizer{gateway: gateway}
}

// document lower-cased view of one metadata object with its trait and property lookups
type document struct {
	top    map[string]any
	traits map[string]any
	props  map[string]any
	order  []model.Trait
}

func newDocument(raw map[string]any) *document {
	d := &document{
		top:    lowerKeys(raw),
		traits: map[string]any{},
		props:  map[string]any{},
	}

	switch attrs := d.top["attributes"].(type) {
	case []any:
		for _, item := range attrs {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry = lowerKeys(entry)
			name := asString(entry["trait_type"])
			if name == "" {
				name = asString(entry["name"])
			}
			if name == "" {
				name = asString(entry["key"])
			}
			if name == "" {
				continue
			}
			value := entry["value"]
			d.order = append(d.order, model.Trait{Name: name, Value: asString(value)})
			lk := strings.ToLower(name)
			if _, seen := d.traits[lk]; !seen {
				d.traits[lk] = value
			}
		}
	case map[string]any:
		names := make([]string, 0, len(attrs))
		for k := range attrs {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, name := range names {
			d.order = append(d.order, model.Trait{Name: name, Value: asString(attrs[name])})
			d.traits[strings.ToLower(name)] = attrs[name]
		}
	}

	if props, ok := d.top["properties"].(map[string]any); ok {
		d.props = lowerKeys(props)
	}
	return d
}

// lookup raw value by rule priority, nil when nothing matched
func (d *document) lookup(r fieldRule) any {
	for _, k := range r.keys {
		if v, ok := d.top[k]; ok && !empty(v) {
			return v
		}
	}
	for _, k := range r.traits {
		if v, ok := d.traits[k]; ok && !empty(v) {
			return v
		}
	}
	for _, k := range r.props {
		if v, ok := d.props[k]; ok && !empty(v) {
			return v
		}
	}
	return nil
}

func (d *document) str(r fieldRule) string {
	if s := asString(d.lookup(r)); s != "" {
		return s
	}
	return r.def
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return asString(t) == "" && len(t) == 0
	}
	return false
}

// Normalize never fails: every missing or malformed field falls back to its default
func (n *Normalizer) Normalize(raw map[string]any, in Input) model.AssetRecord {
	if raw == nil {
		raw = map[string]any{}
	}
	d := newDocument(raw)

	rec := model.AssetRecord{
		ID:              in.Key.ID(),
		ContractAddress: in.Key.Contract,
		TokenID:         in.Key.TokenID,
		Title:           d.str(titleRule),
		Author:          d.str(authorRule),
		Description:     d.str(descriptionRule),
		Collection:      d.collection(in.Collection),
		Tags:            asStrings(d.lookup(tagsRule)),
		MediaURL:        n.gateway.NormalizeURI(d.str(mediaRule)),
		Owner:           in.Owner,
		Attributes:      d.order,
		MetadataURI:     in.MetadataURI,
		File:            d.file(),
	}
	if rec.Title == "" {
		rec.Title = "#" + in.Key.TokenID
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.Attributes == nil {
		rec.Attributes = []model.Trait{}
	}
	rec.ContentType = d.contentType(rec.MediaURL, rec.File)
	rec.License = d.license()
	rec.Protection = d.protection()
	rec.Creator = d.creator(rec.Author, in.Owner)
	return rec
}

func (d *document) collection(fallback string) string {
	if c := d.str(collectionRule); c != "" {
		return c
	}
	return fallback
}

func (d *document) license() model.License {
	lic := model.License{
		Type:          model.DefaultLicenseType,
		Details:       d.str(licenseDetailsRule),
		Attribution:   asBool(d.lookup(attributionRule), true),
		CommercialUse: asBool(d.lookup(commercialRule), false),
		Modifications: asBool(d.lookup(modificationsRule), false),
	}
	// license may be an object carrying its own terms
	if obj, ok := d.lookup(licenseTypeRule).(map[string]any); ok {
		obj = lowerKeys(obj)
		if t := asString(obj["type"]); t != "" {
			lic.Type = t
		} else if t := asString(obj["name"]); t != "" {
			lic.Type = t
		}
		if s := asString(obj["details"]); s != "" {
			lic.Details = s
		} else if s := asString(obj["url"]); s != "" && lic.Details == "" {
			lic.Details = s
		}
		if v, ok := obj["attribution"]; ok {
			lic.Attribution = asBool(v, lic.Attribution)
		}
		if v, ok := obj["commercial_use"]; ok {
			lic.CommercialUse = asBool(v, lic.CommercialUse)
		}
		if v, ok := obj["modifications"]; ok {
			lic.Modifications = asBool(v, lic.Modifications)
		}
		return lic
	}
	lic.Type = d.str(licenseTypeRule)
	return lic
}

func (d *document) protection() model.Protection {
	p := model.Protection{
		Status:           d.str(protectionStatusRule),
		Scope:            d.str(protectionScopeRule),
		Duration:         d.str(durationRule),
		RegistrationDate: model.UnknownValue,
	}
	if date, ok := parseDate(d.lookup(registrationRule)); ok {
		p.RegistrationDate = date
	}
	return p
}

func (d *document) creator(author, owner string) model.Creator {
	c := model.Creator{
		Address: d.str(creatorAddressRule),
		Bio:     d.str(creatorBioRule),
		Avatar:  d.str(creatorAvatarRule),
		Website: d.str(creatorWebsiteRule),
	}
	if author != model.UnknownValue {
		c.Name = author
	}

	switch v := d.top["creator"].(type) {
	case map[string]any:
		obj := lowerKeys(v)
		if s := asString(obj["address"]); s != "" {
			c.Address = s
		}
		if s := asString(obj["name"]); s != "" {
			c.Name = s
		}
		if s := asString(obj["bio"]); s != "" {
			c.Bio = s
		}
		if s := asString(obj["avatar"]); s != "" {
			c.Avatar = s
		}
		if s := asString(obj["website"]); s != "" {
			c.Website = s
		}
	case string:
		if isHexAddress(v) && c.Address == "" {
			c.Address = v
		} else if c.Name == "" {
			c.Name = strings.TrimSpace(v)
		}
	}

	if c.Address == "" {
		c.Address = owner
	}
	return c
}

func (d *document) file() *model.FileDetails {
	f := model.FileDetails{
		Size:       asString(d.top["file_size"]),
		Format:     asString(d.top["format"]),
		Dimensions: asString(d.top["dimensions"]),
	}
	if f.Format == "" {
		f.Format = asString(d.top["mime_type"])
	}
	if files, ok := d.props["files"].([]any); ok && len(files) > 0 {
		if first, ok := files[0].(map[string]any); ok {
			first = lowerKeys(first)
			if f.Size == "" {
				f.Size = asString(first["size"])
			}
			if f.Format == "" {
				f.Format = asString(first["type"])
			}
			if f.Dimensions == "" {
				f.Dimensions = asString(first["dimensions"])
			}
		}
	}
	if f.Dimensions == "" {
		w, h := asString(d.top["width"]), asString(d.top["height"])
		if w != "" && h != "" {
			f.Dimensions = w + "x" + h
		}
	}
	if f == (model.FileDetails{}) {
		return nil
	}
	return &f
}

var extContentTypes = map[string]string{
	".mp3": "audio", ".wav": "audio", ".flac": "audio", ".ogg": "audio", ".m4a": "audio",
	".mp4": "video", ".webm": "video", ".mov": "video", ".m4v": "video",
	".txt": "text", ".md": "text", ".pdf": "text", ".html": "text",
	".glb": "3d", ".gltf": "3d",
}

// contentType explicit value first, then MIME of the file, then media extension
func (d *document) contentType(mediaURL string, file *model.FileDetails) string {
	if ct := d.str(contentTypeRule); ct != "" {
		return mimeClass(ct)
	}
	if file != nil && file.Format != "" {
		return mimeClass(file.Format)
	}
	if mediaURL != "" && !strings.HasPrefix(mediaURL, "data:") {
		clean := mediaURL
		if i := strings.IndexAny(clean, "?#"); i >= 0 {
			clean = clean[:i]
		}
		if ct, ok := extContentTypes[strings.ToLower(path.Ext(clean))]; ok {
			return ct
		}
	}
	return model.DefaultContentType
}

// mimeClass "image/png" -> "image", plain words are lower-cased
func mimeClass(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if major, _, ok := strings.Cut(s, "/"); ok {
		return major
	}
	return s
}

func isHexAddress(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 42 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return false
	}
	for _, r := range s[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
