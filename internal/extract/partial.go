package extract

import (
	"leadgen-engine/internal/domain"
)

// Partial is a subset of the lead schema. Absent keys are null; empty
// values are never stored.
type Partial map[domain.Field]string

func (p Partial) set(f domain.Field, v string) {
	if v != "" {
		p[f] = v
	}
}

// Origin records which path produced a field.
type Origin string

const (
	OriginModel    Origin = "model"
	OriginFallback Origin = "fallback"
)

type Origins map[domain.Field]Origin

// Merge fills the nulls of primary from fallback. A field present in
// primary is never touched.
func Merge(primary, fallback Partial) (Partial, Origins) {
	out := make(Partial, len(domain.Schema))
	origins := make(Origins, len(domain.Schema))
	for _, f := range domain.Schema {
		if v, ok := primary[f]; ok && v != "" {
			out[f] = v
			origins[f] = OriginModel
			continue
		}
		if v, ok := fallback[f]; ok && v != "" {
			out[f] = v
			origins[f] = OriginFallback
		}
	}
	return out, origins
}

// Apply copies p into r.
func (p Partial) Apply(r *domain.LeadRecord) {
	for f, v := range p {
		r.Set(f, v)
	}
}
