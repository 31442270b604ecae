package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"welearn/internal/domain"
)

// Context tells a rule set which operation a form is submitted for.
type Context string

const (
	ContextCreate Context = "create"
	ContextUpdate Context = "update"
	ContextDelete Context = "delete"
)

// Form selects the rule table. The account forms differ only in their
// identifier field and minimum age.
type Form int

const (
	FormUser Form = iota
	FormProfile
	FormAdmin
	FormQuiz
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	fullNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]*$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ulidPattern     = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
)

type rule func(rs *RuleSet, value string) string

type fieldSpec struct {
	name  string
	label string
	// identifier fields are skipped on create and required otherwise
	identifier bool
	// optionalOnUpdate fields may be left blank on update
	optionalOnUpdate bool
	rules            []rule
}

// RuleSet validates the fields of one form. It is safe for concurrent use.
type RuleSet struct {
	form   Form
	minAge int
	fields []fieldSpec
	index  map[string]int
	now    func() time.Time
}

// Option configures a RuleSet.
type Option func(*RuleSet)

// WithNow replaces the clock used for date-of-birth checks.
func WithNow(now func() time.Time) Option {
	return func(rs *RuleSet) {
		rs.now = now
	}
}

// NewRuleSet builds the rule table for form.
func NewRuleSet(form Form, opts ...Option) *RuleSet {
	rs := &RuleSet{form: form, now: time.Now}
	for _, opt := range opts {
		opt(rs)
	}

	switch form {
	case FormUser:
		rs.minAge = 10
		rs.fields = accountFields("userId", "User ID")
	case FormProfile:
		rs.minAge = 13
		rs.fields = accountFields("", "")
	case FormAdmin:
		rs.minAge = 18
		rs.fields = accountFields("adminId", "Admin ID")
	case FormQuiz:
		rs.fields = quizFields()
	}

	rs.index = make(map[string]int, len(rs.fields))
	for i, f := range rs.fields {
		rs.index[f.name] = i
	}
	return rs
}

// MinAge is the minimum age enforced on dateOfBirth, 0 for forms without one.
func (rs *RuleSet) MinAge() int {
	return rs.minAge
}

// Fields returns the field names in validation order.
func (rs *RuleSet) Fields() []string {
	names := make([]string, len(rs.fields))
	for i, f := range rs.fields {
		names[i] = f.name
	}
	return names
}

// Validate checks one field and returns "" when it is valid. Unknown
// fields are always valid. The first failing rule wins.
func (rs *RuleSet) Validate(field, value string, ctx Context) string {
	i, ok := rs.index[field]
	if !ok {
		return ""
	}
	spec := rs.fields[i]

	if spec.identifier {
		if ctx == ContextCreate {
			return ""
		}
		if strings.TrimSpace(value) == "" {
			return spec.label + " is required"
		}
		if !ulidPattern.MatchString(value) {
			return "Invalid " + strings.ToLower(spec.label) + " format"
		}
		return ""
	}

	// Only the identifier matters for deletes.
	if ctx == ContextDelete {
		return ""
	}
	// Values are stored trimmed, so every rule sees the trimmed value.
	value = strings.TrimSpace(value)
	if value == "" {
		if spec.optionalOnUpdate && ctx == ContextUpdate {
			return ""
		}
		return spec.label + " is required"
	}
	for _, r := range spec.rules {
		if msg := r(rs, value); msg != "" {
			return msg
		}
	}
	return ""
}

// ValidateForm validates every field of the form. Fields missing from
// values are validated as empty strings.
func (rs *RuleSet) ValidateForm(values map[string]string, ctx Context) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for _, f := range rs.fields {
		if msg := rs.Validate(f.name, values[f.name], ctx); msg != "" {
			errs = append(errs, domain.FieldError{Path: f.name, Msg: msg})
		}
	}
	return errs
}

func accountFields(idField, idLabel string) []fieldSpec {
	var fields []fieldSpec
	if idField != "" {
		fields = append(fields, fieldSpec{name: idField, label: idLabel, identifier: true})
	}
	return append(fields,
		fieldSpec{
			name:  "username",
			label: "Username",
			rules: []rule{
				minLen("Username", 3),
				maxLen("Username", 20),
				matches(usernamePattern, "Username must start with a letter and contain only letters, numbers, and underscores"),
				func(_ *RuleSet, v string) string {
					if strings.Contains(v, "__") {
						return "Username cannot contain consecutive underscores"
					}
					return ""
				},
				func(_ *RuleSet, v string) string {
					if strings.HasSuffix(v, "_") {
						return "Username cannot end with an underscore"
					}
					return ""
				},
			},
		},
		fieldSpec{
			name:  "fullName",
			label: "Full name",
			rules: []rule{
				minLen("Full name", 3),
				maxLen("Full name", 30),
				matches(fullNamePattern, "Full name can only contain letters, spaces, hyphens, and apostrophes"),
			},
		},
		fieldSpec{
			name:  "email",
			label: "Email",
			rules: []rule{
				maxLen("Email", 100),
				matches(emailPattern, "Please enter a valid email address"),
			},
		},
		fieldSpec{
			name:             "password",
			label:            "Password",
			optionalOnUpdate: true,
			rules: []rule{
				minLen("Password", 8),
				maxLen("Password", 64),
				hasClass(unicode.IsLower, "Password must contain at least one lowercase letter"),
				hasClass(unicode.IsUpper, "Password must contain at least one uppercase letter"),
				hasClass(unicode.IsDigit, "Password must contain at least one number"),
				hasClass(isSpecial, "Password must contain at least one special character"),
			},
		},
		fieldSpec{
			name:  "dateOfBirth",
			label: "Date of birth",
			rules: []rule{dateOfBirth},
		},
	)
}

func quizFields() []fieldSpec {
	return []fieldSpec{
		{name: "quizId", label: "Quiz ID", identifier: true},
		{name: "title", label: "Title", rules: []rule{minLen("Title", 3), maxLen("Title", 100)}},
		{name: "instruction", label: "Instruction", rules: []rule{maxLen("Instruction", 500)}},
		{name: "question", label: "Question", rules: []rule{maxLen("Question", 2000)}},
		{name: "answer", label: "Answer", rules: []rule{maxLen("Answer", 200)}},
		{name: "category", label: "Category", rules: []rule{oneOf("Category", domain.KnownCategories)}},
		{name: "difficulty", label: "Difficulty", rules: []rule{
			oneOf("Difficulty", []string{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}),
		}},
		{name: "type", label: "Type", rules: []rule{
			oneOf("Type", []string{domain.QuizTypeFillInBlank, domain.QuizTypeMultipleBlank}),
		}},
	}
}

func minLen(label string, n int) rule {
	return func(_ *RuleSet, v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
			return fmt.Sprintf("%s must be at least %d characters", label, n)
		}
		return ""
	}
}

func maxLen(label string, n int) rule {
	return func(_ *RuleSet, v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > n {
			return fmt.Sprintf("%s must be at most %d characters", label, n)
		}
		return ""
	}
}

func matches(re *regexp.Regexp, msg string) rule {
	return func(_ *RuleSet, v string) string {
		if !re.MatchString(strings.TrimSpace(v)) {
			return msg
		}
		return ""
	}
}

func hasClass(class func(rune) bool, msg string) rule {
	return func(_ *RuleSet, v string) string {
		if strings.IndexFunc(v, class) < 0 {
			return msg
		}
		return ""
	}
}

func oneOf(label string, allowed []string) rule {
	return func(_ *RuleSet, v string) string {
		v = strings.TrimSpace(v)
		for _, a := range allowed {
			if v == a {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(allowed, ", "))
	}
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func dateOfBirth(rs *RuleSet, v string) string {
	dob, err := time.Parse(domain.DateLayout, strings.TrimSpace(v))
	if err != nil {
		return "Please enter a valid date"
	}
	now := rs.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dob.After(today) {
		return "Date of birth cannot be in the future"
	}
	if rs.minAge > 0 && Age(dob, now) < rs.minAge {
		return fmt.Sprintf("You must be at least %d years old", rs.minAge)
	}
	return ""
}

// Age returns the number of full years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
