package dialect

// FileOptions, LOAD DATA INFILE ve SELECT ... INTO OUTFILE'ın ortak alan ve satır
// seçenekleridir. nil bir seçenek derlenen SQL'e yazılmaz.
type FileOptions struct {
	CharacterSet         *string
	FieldsTerminatedBy   *string
	EnclosedBy           *string
	OptionallyEnclosedBy bool
	EscapedBy            *string
	LinesStartingBy      *string
	LinesTerminatedBy    *string
}

// ----------------------------------------------------------------------------
// OUTFILE
// ----------------------------------------------------------------------------

// OutfileType, INTO OUTFILE ile INTO DUMPFILE arasında seçim yapar.
type OutfileType string

const (
	Outfile  OutfileType = "outfile"
	Dumpfile OutfileType = "dumpfile"
)

// OutfileClause, SELECT ... INTO OUTFILE|DUMPFILE cümlesini tanımlar.
type OutfileClause struct {
	FileOptions
	Type OutfileType
	File string
}

// NewOutfileClause, file'a yazan bir cümle döndürür.
func NewOutfileClause(file string, typ OutfileType) *OutfileClause {
	if typ == "" {
		typ = Outfile
	}
	return &OutfileClause{File: file, Type: typ}
}

func (o *OutfileClause) CharacterSet(charset string) *OutfileClause {
	o.FileOptions.CharacterSet = &charset
	return o
}

func (o *OutfileClause) EscapedBy(character string) *OutfileClause {
	o.FileOptions.EscapedBy = &character
	return o
}

// EnclosedBy, alan çevreleyicisini ayarlar; optionally true ise OPTIONALLY ENCLOSED BY yazılır.
func (o *OutfileClause) EnclosedBy(character string, optionally bool) *OutfileClause {
	o.FileOptions.EnclosedBy = &character
	o.OptionallyEnclosedBy = optionally
	return o
}

func (o *OutfileClause) FieldsTerminatedBy(character string) *OutfileClause {
	o.FileOptions.FieldsTerminatedBy = &character
	return o
}

func (o *OutfileClause) LinesTerminatedBy(character string) *OutfileClause {
	o.FileOptions.LinesTerminatedBy = &character
	return o
}

// ----------------------------------------------------------------------------
// INFILE
// ----------------------------------------------------------------------------

// InfileType, LOAD DATA INFILE'ın yinelenen anahtar davranışıdır.
type InfileType string

const (
	InfileIgnore  InfileType = "ignore"
	InfileReplace InfileType = "replace"
)

// InfileClause, LOAD DATA [LOCAL] INFILE cümlesini tanımlar.
type InfileClause struct {
	FileOptions
	File        string
	Columns     []any
	Type        InfileType
	Local       bool
	Rules       map[string]any
	IgnoreCount int

	err error
}

// NewInfileClause, file'ı columns'a yükleyen bir cümle döndürür.
func NewInfileClause(file string, columns []any) *InfileClause {
	return &InfileClause{File: file, Columns: columns}
}

func (c *InfileClause) CharacterSet(charset string) *InfileClause {
	c.FileOptions.CharacterSet = &charset
	return c
}

func (c *InfileClause) EscapedBy(character string) *InfileClause {
	c.FileOptions.EscapedBy = &character
	return c
}

func (c *InfileClause) EnclosedBy(character string, optionally bool) *InfileClause {
	c.FileOptions.EnclosedBy = &character
	c.OptionallyEnclosedBy = optionally
	return c
}

func (c *InfileClause) FieldsTerminatedBy(character string) *InfileClause {
	c.FileOptions.FieldsTerminatedBy = &character
	return c
}

func (c *InfileClause) LinesStartingBy(character string) *InfileClause {
	c.FileOptions.LinesStartingBy = &character
	return c
}

func (c *InfileClause) LinesTerminatedBy(character string) *InfileClause {
	c.FileOptions.LinesTerminatedBy = &character
	return c
}

// IgnoreLines, dosyanın ilk count satırını atlar. count pozitif olmalıdır;
// değilse hata cümle derlenirken bildirilir.
func (c *InfileClause) IgnoreLines(count int) *InfileClause {
	if count < 1 {
		c.err = ErrInvalidLines
		return c
	}
	c.IgnoreCount = count
	return c
}

// Ignore, mevcut bir unique anahtarı yineleyen satırları atlar.
func (c *InfileClause) Ignore() *InfileClause {
	c.Type = InfileIgnore
	return c
}

// Replace, mevcut bir unique anahtarı yineleyen satırların üzerine yazar.
func (c *InfileClause) Replace() *InfileClause {
	c.Type = InfileReplace
	return c
}

// WithLocal, dosyayı istemci makineden okur.
func (c *InfileClause) WithLocal() *InfileClause {
	c.Local = true
	return c
}

// WithRules, yüklenen her satır için değerlendirilen SET atamaları ekler.
func (c *InfileClause) WithRules(rules map[string]any) *InfileClause {
	c.Rules = rules
	return c
}

// Err, cümlede kaydedilen ilk geçersiz seçeneği döndürür.
func (c *InfileClause) Err() error {
	return c.err
}
