// Package seed loads users and challenges from a YAML file.
//
//	users:
//	  - name: Ana
//	    email: ana@example.com
//	challenges:
//	  - name: April steps
//	    type: steps
//	    goalType: cumulative
//	    startDate: 2026-04-01
//	    endDate: 2026-04-30
//	    targetValue: 100000
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"wellness/internal/app"
	"wellness/internal/domain"
	"wellness/internal/logger"
)

// File is the document layout of a seed file.
type File struct {
	Users      []User      `yaml:"users"`
	Challenges []Challenge `yaml:"challenges"`
}

// User is one user entry.
type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Challenge is one challenge entry. Dates are YYYY-MM-DD or RFC 3339; a bare
// end date covers the whole day.
type Challenge struct {
	Name         string          `yaml:"name"`
	Type         domain.Metric   `yaml:"type"`
	GoalType     domain.GoalType `yaml:"goalType"`
	StartDate    string          `yaml:"startDate"`
	EndDate      string          `yaml:"endDate"`
	TargetValue  float64         `yaml:"targetValue"`
	RequiredDays int             `yaml:"requiredDays,omitempty"`
}

func (c Challenge) toDomain() (domain.Challenge, error) {
	start, err := domain.ParseWindowBound(c.StartDate, false)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("challenge %q startDate: %w", c.Name, err)
	}
	end, err := domain.ParseWindowBound(c.EndDate, true)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("challenge %q endDate: %w", c.Name, err)
	}
	return domain.Challenge{
		Name:         c.Name,
		Type:         c.Type,
		StartDate:    start,
		EndDate:      end,
		GoalType:     c.GoalType,
		TargetValue:  c.TargetValue,
		RequiredDays: c.RequiredDays,
	}, nil
}

// Decode parses a seed document, rejecting unknown keys.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Result counts what Apply created and skipped.
type Result struct {
	UsersCreated      int
	UsersSkipped      int
	ChallengesCreated int
	ChallengesSkipped int
}

// Apply creates the entries of f. It is idempotent: users whose email is
// taken and challenges whose name already exists are skipped.
func Apply(ctx context.Context, f *File, users *app.UserService, challenges *app.ChallengeService, log *logger.Logger) (Result, error) {
	var res Result
	for _, u := range f.Users {
		_, err := users.Create(ctx, u.Name, u.Email)
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			res.UsersSkipped++
		case err != nil:
			return res, fmt.Errorf("seed user %q: %w", u.Email, err)
		default:
			res.UsersCreated++
		}
	}

	existing, err := challenges.List(ctx)
	if err != nil {
		return res, err
	}
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		names[c.Name] = true
	}

	for _, entry := range f.Challenges {
		def, err := entry.toDomain()
		if err != nil {
			return res, err
		}
		if names[entry.Name] {
			res.ChallengesSkipped++
			continue
		}
		c, err := challenges.Create(ctx, def)
		if err != nil {
			return res, fmt.Errorf("seed challenge %q: %w", entry.Name, err)
		}
		names[c.Name] = true
		res.ChallengesCreated++
	}

	log.Info("seed applied",
		"users_created", res.UsersCreated, "users_skipped", res.UsersSkipped,
		"challenges_created", res.ChallengesCreated, "challenges_skipped", res.ChallengesSkipped)
	return res, nil
}
