// ABOUTME: Profile model holding per-user goal settings.
// ABOUTME: At most one profile per user, keyed by the user ID.
package models

import "time"

// Profile stores the user's weight goal. Nil fields are unset.
type Profile struct {
	ID           string    `json:"id" yaml:"id"`
	TargetWeight *float64  `json:"target_weight,omitempty" yaml:"target_weight,omitempty"`
	StartWeight  *float64  `json:"start_weight,omitempty" yaml:"start_weight,omitempty"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// ProfileFields names the fields an upsert replaces. Nil means "leave as is".
type ProfileFields struct {
	TargetWeight *float64
	StartWeight  *float64
}

// Apply copies the non-nil fields onto p.
func (f ProfileFields) Apply(p *Profile) {
	if f.TargetWeight != nil {
		v := *f.TargetWeight
		p.TargetWeight = &v
	}
	if f.StartWeight != nil {
		v := *f.StartWeight
		p.StartWeight = &v
	}
}

// Float returns a pointer to v, for building ProfileFields.
func Float(v float64) *float64 {
	return &v
}
