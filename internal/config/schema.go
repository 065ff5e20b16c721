package config

// Config holds thesisfmt configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server ServerCfg `mapstructure:"server" yaml:"server"`
	Tasks  TasksCfg  `mapstructure:"tasks" yaml:"tasks"`
	Format FormatCfg `mapstructure:"format" yaml:"format"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// TasksCfg configures the formatting worker pool and task retention.
type TasksCfg struct {
	// MaxWorkers bounds the number of documents formatted concurrently.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
	// QueueSize bounds pending submissions before Submit rejects.
	QueueSize int `mapstructure:"queue_size" yaml:"queue_size"`
	// RetentionHours controls cleanup of finished task records.
	RetentionHours int `mapstructure:"retention_hours" yaml:"retention_hours"`
}

// FontPolicy is the font rule applied to one document role.
type FontPolicy struct {
	EastAsia string  `mapstructure:"east_asia" yaml:"east_asia"`
	Latin    string  `mapstructure:"latin" yaml:"latin"`
	SizePt   float64 `mapstructure:"size_pt" yaml:"size_pt"`
	Bold     bool    `mapstructure:"bold" yaml:"bold"`
	// Align is the paragraph justification: left, center, right, both.
	Align string `mapstructure:"align" yaml:"align"`
}

// SpacingPolicy is the line-spacing rule applied to one document role.
// All values are points; zero leaves the attribute untouched.
type SpacingPolicy struct {
	Line           float64 `mapstructure:"line" yaml:"line"`
	Before         float64 `mapstructure:"before" yaml:"before"`
	After          float64 `mapstructure:"after" yaml:"after"`
	FirstLineChars int     `mapstructure:"first_line_chars" yaml:"first_line_chars"`
}

// FootnoteCfg exposes the page-approximation heuristic used for
// per-page footnote renumbering. True page boundaries are only known at
// render time, so grouping is best-effort by paragraph count.
type FootnoteCfg struct {
	ParagraphsPerPage int `mapstructure:"paragraphs_per_page" yaml:"paragraphs_per_page"`
}

// FormatCfg configures the formatting pipeline.
type FormatCfg struct {
	// SchoolName appears on the generated cover page.
	SchoolName string `mapstructure:"school_name" yaml:"school_name"`
	// DocumentLabel is the document type line under the school name.
	DocumentLabel string `mapstructure:"document_label" yaml:"document_label"`
	// HeaderText is the running page header applied to body sections.
	HeaderText string `mapstructure:"header_text" yaml:"header_text"`

	// Passes toggles individual pipeline passes by name. Passes absent
	// from the map run; explicit false skips them entirely.
	Passes map[string]bool `mapstructure:"passes" yaml:"passes"`

	// Fonts maps a document role to its font rule.
	Fonts map[string]FontPolicy `mapstructure:"fonts" yaml:"fonts"`
	// Spacing maps a document role to its spacing rule.
	Spacing map[string]SpacingPolicy `mapstructure:"spacing" yaml:"spacing"`

	Footnote FootnoteCfg `mapstructure:"footnote" yaml:"footnote"`

	// TieBreak selects the rule-conflict strategy for structure
	// detection: "most_specific" (default) or "first_match".
	TieBreak string `mapstructure:"tie_break" yaml:"tie_break"`
}

// Document role keys used by the font and spacing tables.
const (
	RoleSectionTitle        = "section_title"
	RoleHeading1            = "heading_1"
	RoleHeading2            = "heading_2"
	RoleHeading3            = "heading_3"
	RoleBody                = "body"
	RoleAbstractBody        = "abstract_body"
	RoleKeywordLabel        = "keyword_label"
	RoleKeywordContent      = "keyword_content"
	RoleReferences          = "references"
	RoleFootnote            = "footnote"
	RoleCaption             = "caption"
	RoleTOCEntry            = "toc_entry"
	RoleCoverField          = "cover_field"
	RolePageHeader          = "page_header"
	RoleAcknowledgmentsBody = "acknowledgments_body"
)

// Chinese font size names in points.
var sizeNames = map[string]float64{
	"初号": 42, "小初": 36,
	"一号": 26, "小一": 24,
	"二号": 22, "小二": 18,
	"三号": 16, "小三": 15,
	"四号": 14, "小四": 12,
	"五号": 10.5, "小五": 9,
	"六号": 7.5, "小六": 6.5,
}

// SizeByName resolves a Chinese font size name to points. Returns 0 for
// unknown names.
func SizeByName(name string) float64 {
	return sizeNames[name]
}

// DefaultConfig returns configuration matching the institutional
// formatting rules.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Tasks: TasksCfg{
			MaxWorkers:     5,
			QueueSize:      64,
			RetentionHours: 24,
		},
		Format: FormatCfg{
			SchoolName:    "江西财经大学现代经济管理学院",
			DocumentLabel: "普通本科毕业论文",
			HeaderText:    "江西财经大学现代经济管理学院普通本科毕业论文",
			Passes:        map[string]bool{},
			Fonts: map[string]FontPolicy{
				RoleSectionTitle:        {EastAsia: "黑体", Latin: "Times New Roman", SizePt: 22, Bold: true, Align: "center"},
				RoleHeading1:            {EastAsia: "黑体", Latin: "Times New Roman", SizePt: 18, Bold: true, Align: "center"},
				RoleHeading2:            {EastAsia: "黑体", Latin: "Times New Roman", SizePt: 16, Bold: true, Align: "left"},
				RoleHeading3:            {EastAsia: "黑体", Latin: "Times New Roman", SizePt: 14, Bold: true, Align: "left"},
				RoleBody:                {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 12, Align: "both"},
				RoleAbstractBody:        {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 12, Align: "both"},
				RoleKeywordLabel:        {EastAsia: "楷体", Latin: "Times New Roman", SizePt: 12, Bold: true},
				RoleKeywordContent:      {EastAsia: "楷体", Latin: "Times New Roman", SizePt: 12},
				RoleReferences:          {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 10.5, Align: "left"},
				RoleFootnote:            {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 9},
				RoleCaption:             {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 10.5, Align: "center"},
				RoleTOCEntry:            {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 12},
				RoleCoverField:          {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 16},
				RolePageHeader:          {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 10.5, Align: "center"},
				RoleAcknowledgmentsBody: {EastAsia: "宋体", Latin: "Times New Roman", SizePt: 12, Align: "both"},
			},
			Spacing: map[string]SpacingPolicy{
				RoleBody:                {Line: 22},
				RoleAbstractBody:        {Line: 22},
				RoleHeading1:            {Before: 12, After: 6},
				RoleHeading2:            {Before: 6, After: 3},
				RoleHeading3:            {Before: 6, After: 3},
				RoleReferences:          {Line: 18},
				RoleFootnote:            {Line: 12},
				RoleCaption:             {Line: 15},
				RoleTOCEntry:            {Line: 20},
				RoleAcknowledgmentsBody: {Line: 22, FirstLineChars: 2},
			},
			Footnote: FootnoteCfg{ParagraphsPerPage: 30},
			TieBreak: "most_specific",
		},
	}
}

// PassEnabled reports whether the named pass should run.
func (c *Config) PassEnabled(name string) bool {
	if c == nil {
		return true
	}
	enabled, ok := c.Format.Passes[name]
	if !ok {
		return true
	}
	return enabled
}

// WithPassesDisabled returns a copy of the config with the named passes
// switched off on top of the configured toggles.
func (c *Config) WithPassesDisabled(names []string) *Config {
	if c == nil || len(names) == 0 {
		return c
	}
	out := *c
	passes := make(map[string]bool, len(c.Format.Passes)+len(names))
	for k, v := range c.Format.Passes {
		passes[k] = v
	}
	for _, name := range names {
		passes[name] = false
	}
	out.Format.Passes = passes
	return &out
}

// Font returns the font rule for a role, falling back to the body rule.
func (c *Config) Font(role string) FontPolicy {
	if p, ok := c.Format.Fonts[role]; ok {
		return p
	}
	return c.Format.Fonts[RoleBody]
}

// Spacing returns the spacing rule for a role. The zero policy means no
// spacing adjustment for that role.
func (c *Config) Spacing(role string) SpacingPolicy {
	return c.Format.Spacing[role]
}
