// Package config holds the persisted application state (current branch,
// settings and saved commands) and the process environment.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/fsutil"
	"github.com/felixgeelhaar/todo/internal/query"
)

// Settings are the user-tunable values stored under "config" in state.json.
type Settings struct {
	DefaultSort  query.SortKey  `json:"default_sort" yaml:"default_sort"`
	DefaultDesc  bool           `json:"default_desc" yaml:"default_desc"`
	Color        bool           `json:"color" yaml:"color"`
	ReminderDays int            `json:"reminder_days" yaml:"reminder_days"`
	IDScope      domain.IDScope `json:"id_scope" yaml:"id_scope"`
	UseUUID      bool           `json:"use_uuid" yaml:"use_uuid"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		DefaultSort: query.SortDue,
		Color:       true,
		IDScope:     domain.ScopeGlobal,
	}
}

// Validate checks every setting.
func (s Settings) Validate() error {
	if _, err := query.ParseSortKey(string(s.DefaultSort)); err != nil {
		return err
	}
	if _, err := domain.ParseIDScope(string(s.IDScope)); err != nil {
		return err
	}
	if s.ReminderDays < 0 {
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"reminder_days must be zero or positive, got %d", s.ReminderDays)
	}
	return nil
}

// State is the content of state.json.
type State struct {
	CurrentBranch string              `json:"current_branch" yaml:"current_branch"`
	Config        Settings            `json:"config" yaml:"config"`
	SavedCommands map[string][]string `json:"saved_commands,omitempty" yaml:"saved_commands,omitempty"`

	path string
}

// legacyProfile is where older versions kept saved commands.
type legacyProfile struct {
	SavedCommands map[string][]string `json:"saved_commands"`
}

// DefaultState returns the state of a fresh installation.
func DefaultState() *State {
	return &State{
		CurrentBranch: domain.DefaultBranch,
		Config:        DefaultSettings(),
		SavedCommands: map[string][]string{},
	}
}

// Load reads state.json. A missing or empty file yields the defaults; missing
// fields keep their default values.
func Load(path string) (*State, error) {
	st := DefaultState()
	st.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, todoerrors.NewFileReadError(path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return st, nil
	}

	var raw struct {
		State
		Profile *legacyProfile `json:"profile"`
	}
	raw.State = *st
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, todoerrors.NewCorruptFileError(todoerrors.ErrCodeStateCorrupt, path, err)
	}
	if err := raw.Config.Validate(); err != nil {
		return nil, todoerrors.NewCorruptFileError(todoerrors.ErrCodeStateCorrupt, path, err)
	}

	loaded := raw.State
	loaded.path = path
	loaded.CurrentBranch = domain.NormalizeBranch(loaded.CurrentBranch)
	if loaded.SavedCommands == nil {
		loaded.SavedCommands = map[string][]string{}
	}
	if raw.Profile != nil {
		for name, args := range raw.Profile.SavedCommands {
			if _, _, ok := loaded.SavedCommand(name); !ok {
				loaded.SavedCommands[name] = args
			}
		}
	}
	return &loaded, nil
}

// Path returns the file the state was loaded from.
func (s *State) Path() string {
	return s.path
}

// Save writes the state atomically to the file it was loaded from.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data = append(data, '\n')
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return todoerrors.NewFileWriteError(s.path, err)
	}
	return nil
}

// SwitchBranch makes name the current branch.
func (s *State) SwitchBranch(name string) error {
	name = domain.NormalizeBranch(name)
	if err := domain.ValidateBranch(name); err != nil {
		return err
	}
	s.CurrentBranch = name
	return nil
}

// Configuration keys accepted by Get and Set.
const (
	KeyDefaultSort   = "default_sort"
	KeyDefaultDesc   = "default_desc"
	KeyColor         = "color"
	KeyReminderDays  = "reminder_days"
	KeyIDScope       = "id_scope"
	KeyUseUUID       = "use_uuid"
	KeyCurrentBranch = "current_branch"
)

// Keys lists every configuration key in display order.
func Keys() []string {
	return []string{KeyDefaultSort, KeyDefaultDesc, KeyColor, KeyReminderDays, KeyIDScope, KeyUseUUID, KeyCurrentBranch}
}

func unknownKey(key string) error {
	return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig, "unknown configuration key %q", key).
		WithSuggestion("Valid keys: " + strings.Join(Keys(), ", "))
}

// Get returns the value of a configuration key as text.
func (s *State) Get(key string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case KeyDefaultSort:
		return string(s.Config.DefaultSort), nil
	case KeyDefaultDesc:
		return strconv.FormatBool(s.Config.DefaultDesc), nil
	case KeyColor:
		return strconv.FormatBool(s.Config.Color), nil
	case KeyReminderDays:
		return strconv.Itoa(s.Config.ReminderDays), nil
	case KeyIDScope:
		return string(s.Config.IDScope), nil
	case KeyUseUUID:
		return strconv.FormatBool(s.Config.UseUUID), nil
	case KeyCurrentBranch:
		return s.CurrentBranch, nil
	default:
		return "", unknownKey(key)
	}
}

// Set parses value and stores it under key. The current branch is changed
// with the branch command, not here.
func (s *State) Set(key, value string) error {
	value = strings.TrimSpace(value)
	next := s.Config

	switch strings.ToLower(strings.TrimSpace(key)) {
	case KeyDefaultSort:
		k, err := query.ParseSortKey(value)
		if err != nil {
			return err
		}
		next.DefaultSort = k
	case KeyDefaultDesc:
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		next.DefaultDesc = b
	case KeyColor:
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		next.Color = b
	case KeyReminderDays:
		n, err := strconv.Atoi(value)
		if err != nil {
			return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
				"reminder_days must be a number, got %q", value)
		}
		next.ReminderDays = n
	case KeyIDScope:
		scope, err := domain.ParseIDScope(value)
		if err != nil {
			return err
		}
		next.IDScope = scope
	case KeyUseUUID:
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		next.UseUUID = b
	case KeyCurrentBranch:
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig, "current_branch is read-only").
			WithSuggestion("Switch branches with 'todo branch <name>'")
	default:
		return unknownKey(key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	s.Config = next
	return nil
}

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"%s must be true or false, got %q", key, value)
	}
}

// SavedCommand looks up a saved command case-insensitively and returns its
// stored name and arguments.
func (s *State) SavedCommand(name string) (string, []string, bool) {
	for key, args := range s.SavedCommands {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return key, slices.Clone(args), true
		}
	}
	return "", nil, false
}

// SavedNames returns the saved command names in sorted order.
func (s *State) SavedNames() []string {
	names := make([]string, 0, len(s.SavedCommands))
	for name := range s.SavedCommands {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}

// SaveCommand stores args under name, replacing a saved command with the same
// name in any letter case. reserved reports built-in command names, which
// cannot be shadowed.
func (s *State) SaveCommand(name string, args []string, reserved func(string) bool) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig, "saved command name cannot be empty")
	case strings.HasPrefix(name, "-"):
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig, "saved command name cannot start with '-'")
	case strings.ContainsFunc(name, func(r rune) bool { return r == ' ' || r == '\t' }):
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig, "saved command name cannot contain spaces")
	case reserved != nil && reserved(strings.ToLower(name)):
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig,
			"%q is a built-in command name and cannot be used", name)
	case len(args) == 0:
		return todoerrors.NewValidationError(todoerrors.ErrCodeInvalidConfig, "no command given").
			WithSuggestion("Example: todo saved save today -- list --group-by due-day")
	}

	if existing, _, ok := s.SavedCommand(name); ok {
		delete(s.SavedCommands, existing)
	}
	if s.SavedCommands == nil {
		s.SavedCommands = map[string][]string{}
	}
	s.SavedCommands[name] = slices.Clone(args)
	return nil
}

// RemoveCommand deletes a saved command and returns its stored name.
func (s *State) RemoveCommand(name string) (string, error) {
	key, _, ok := s.SavedCommand(name)
	if !ok {
		return "", savedNotFound(name)
	}
	delete(s.SavedCommands, key)
	return key, nil
}

// LookupCommand is SavedCommand with a not-found error.
func (s *State) LookupCommand(name string) (string, []string, error) {
	key, args, ok := s.SavedCommand(name)
	if !ok {
		return "", nil, savedNotFound(name)
	}
	return key, args, nil
}

func savedNotFound(name string) error {
	return todoerrors.Newf(todoerrors.ErrCodeSavedNotFound, "no saved command named %q", name).
		WithSuggestion("Run 'todo saved list' to see saved commands")
}

// Expand replaces a leading saved command name in args (without the program
// name) by its stored arguments. Flags and built-in names are never expanded.
func (s *State) Expand(args []string, reserved func(string) bool) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return args
	}
	if reserved != nil && reserved(strings.ToLower(args[0])) {
		return args
	}
	_, saved, ok := s.SavedCommand(args[0])
	if !ok || len(saved) == 0 {
		return args
	}
	return append(saved, args[1:]...)
}
