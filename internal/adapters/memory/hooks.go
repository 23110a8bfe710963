package memory

import (
	"time"

	"fedstore/pkg/domain"
)

// RegistrationHooks wires the generic store for event registrations.
func RegistrationHooks() Hooks[domain.Registration] {
	return Hooks[domain.Registration]{
		SetID: func(r domain.Registration, id string) domain.Registration {
			r.ID = id
			return r
		},
		SetOrigin: func(r domain.Registration, tag domain.StoreTag) domain.Registration {
			r.Origin = tag
			return r
		},
		Apply: func(r domain.Registration, fields domain.Fields) domain.Registration {
			for name, value := range fields {
				switch name {
				case domain.FieldEmail:
					r.Email, _ = value.(string)
				case domain.FieldName:
					r.Name, _ = value.(string)
				case domain.FieldCompany:
					r.Company, _ = value.(string)
				case domain.FieldSource:
					r.Source, _ = value.(string)
				case domain.FieldTags:
					if tags, ok := value.([]string); ok {
						r.Tags = tags
					}
				case domain.FieldCheckedInAt:
					if t, ok := value.(time.Time); ok {
						utc := t.UTC()
						r.CheckedInAt = &utc
					}
				}
			}
			return r
		},
	}
}

// ContactHooks wires the generic store for contact submissions.
func ContactHooks() Hooks[domain.ContactSubmission] {
	return Hooks[domain.ContactSubmission]{
		SetID: func(c domain.ContactSubmission, id string) domain.ContactSubmission {
			c.ID = id
			return c
		},
		SetOrigin: func(c domain.ContactSubmission, tag domain.StoreTag) domain.ContactSubmission {
			c.Origin = tag
			return c
		},
		Apply: func(c domain.ContactSubmission, fields domain.Fields) domain.ContactSubmission {
			for name, value := range fields {
				switch name {
				case domain.FieldEmail:
					c.Email, _ = value.(string)
				case domain.FieldName:
					c.Name, _ = value.(string)
				case domain.FieldMessage:
					c.Message, _ = value.(string)
				}
			}
			return c
		},
	}
}

// SignupHooks wires the generic store for email signups.
func SignupHooks() Hooks[domain.EmailSignup] {
	return Hooks[domain.EmailSignup]{
		SetID: func(s domain.EmailSignup, id string) domain.EmailSignup {
			s.ID = id
			return s
		},
		SetOrigin: func(s domain.EmailSignup, tag domain.StoreTag) domain.EmailSignup {
			s.Origin = tag
			return s
		},
		Apply: func(s domain.EmailSignup, fields domain.Fields) domain.EmailSignup {
			for name, value := range fields {
				switch name {
				case domain.FieldEmail:
					s.Email, _ = value.(string)
				case domain.FieldSource:
					s.Source, _ = value.(string)
				}
			}
			return s
		},
	}
}
