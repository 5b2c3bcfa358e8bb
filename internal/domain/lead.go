package domain

import (
	"strconv"
	"time"
)

// Field names one slot of the fixed lead schema.
type Field string

const (
	FieldCompanyName   Field = "company_name"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldLinkedIn      Field = "linkedin"
	FieldWebsite       Field = "website"
	FieldIndustry      Field = "industry"
	FieldDescription   Field = "description"
	FieldAddress       Field = "address"
	FieldContactPerson Field = "contact_person"
	FieldServices      Field = "services"
	FieldCompanySize   Field = "company_size"
	FieldFoundedYear   Field = "founded_year"
	FieldRevenueRange  Field = "revenue_range"
	FieldTechnologies  Field = "technologies"
	FieldSocialMedia   Field = "social_media"
)

// Schema lists the extractable fields in output order.
var Schema = []Field{
	FieldCompanyName,
	FieldEmail,
	FieldPhone,
	FieldLinkedIn,
	FieldWebsite,
	FieldIndustry,
	FieldDescription,
	FieldAddress,
	FieldContactPerson,
	FieldServices,
	FieldCompanySize,
	FieldFoundedYear,
	FieldRevenueRange,
	FieldTechnologies,
	FieldSocialMedia,
}

const (
	ColumnIsRelevant          = "is_relevant"
	ColumnRelevanceConfidence = "relevance_confidence"
	ColumnRelevanceReason     = "relevance_reason"
)

// Columns is the exported table header. Consumers depend on these names
// and this order.
var Columns = func() []string {
	cols := make([]string, 0, len(Schema)+3)
	for _, f := range Schema {
		cols = append(cols, string(f))
	}
	return append(cols, ColumnIsRelevant, ColumnRelevanceConfidence, ColumnRelevanceReason)
}()

func IsField(name string) bool {
	for _, f := range Schema {
		if string(f) == name {
			return true
		}
	}
	return false
}

// LeadRecord is one extracted company. An empty string means null.
type LeadRecord struct {
	CompanyName   string `json:"company_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LinkedIn      string `json:"linkedin"`
	Website       string `json:"website"`
	Industry      string `json:"industry"`
	Description   string `json:"description"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Services      string `json:"services"`
	CompanySize   string `json:"company_size"`
	FoundedYear   string `json:"founded_year"`
	RevenueRange  string `json:"revenue_range"`
	Technologies  string `json:"technologies"`
	SocialMedia   string `json:"social_media"`

	Relevance RelevanceAssessment `json:"relevance"`

	// Not part of the exported columns.
	SourceURL     string    `json:"source_url"`
	SearchTitle   string    `json:"search_title"`
	SearchSnippet string    `json:"search_snippet"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

func (r *LeadRecord) slot(f Field) *string {
	switch f {
	case FieldCompanyName:
		return &r.CompanyName
	case FieldEmail:
		return &r.Email
	case FieldPhone:
		return &r.Phone
	case FieldLinkedIn:
		return &r.LinkedIn
	case FieldWebsite:
		return &r.Website
	case FieldIndustry:
		return &r.Industry
	case FieldDescription:
		return &r.Description
	case FieldAddress:
		return &r.Address
	case FieldContactPerson:
		return &r.ContactPerson
	case FieldServices:
		return &r.Services
	case FieldCompanySize:
		return &r.CompanySize
	case FieldFoundedYear:
		return &r.FoundedYear
	case FieldRevenueRange:
		return &r.RevenueRange
	case FieldTechnologies:
		return &r.Technologies
	case FieldSocialMedia:
		return &r.SocialMedia
	}
	return nil
}

func (r *LeadRecord) Get(f Field) string {
	if p := r.slot(f); p != nil {
		return *p
	}
	return ""
}

// Set stores v in field f. Unknown fields are ignored.
func (r *LeadRecord) Set(f Field, v string) {
	if p := r.slot(f); p != nil {
		*p = v
	}
}

// Row renders the record in Columns order.
func (r *LeadRecord) Row() []string {
	row := make([]string, 0, len(Columns))
	for _, f := range Schema {
		row = append(row, r.Get(f))
	}
	return append(row,
		strconv.FormatBool(r.Relevance.IsRelevant),
		strconv.FormatFloat(r.Relevance.Confidence, 'f', 2, 64),
		r.Relevance.Reason,
	)
}

// LeadSet is the ordered output of one run.
type LeadSet struct {
	records []LeadRecord
}

func NewLeadSet() *LeadSet { return &LeadSet{} }

func (s *LeadSet) Append(r LeadRecord) { s.records = append(s.records, r) }

func (s *LeadSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the records in insertion order.
func (s *LeadSet) Records() []LeadRecord {
	if s == nil {
		return nil
	}
	out := make([]LeadRecord, len(s.records))
	copy(out, s.records)
	return out
}
