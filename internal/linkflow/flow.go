package linkflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	goversion "github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/okvist/printlink/internal/logging"
)

const (
	// DefaultValidateTimeout bounds the single validation call against
	// the printer. On expiry the attempt is reported as cannot_connect.
	DefaultValidateTimeout = 5 * time.Second

	// MinAPIVersion is the lowest printer API version the integration
	// supports.
	MinAPIVersion = "2.0.0"
)

// Step identifies the flow state currently awaiting input.
type Step string

const (
	// StepAuthChoice collects the authentication type.
	StepAuthChoice Step = "auth_choice"
	// StepDigestCredentials collects host, username and password.
	StepDigestCredentials Step = "digest_credentials"
	// StepAPIKey collects host and API key.
	StepAPIKey Step = "api_key"
	// StepComplete is the terminal state; the entry has been created.
	StepComplete Step = "complete"
)

// ErrorTag classifies a failed validation attempt for the form layer.
type ErrorTag string

const (
	ErrorNone          ErrorTag = ""
	ErrorCannotConnect ErrorTag = "cannot_connect"
	ErrorNotSupported  ErrorTag = "not_supported"
	ErrorInvalidAuth   ErrorTag = "invalid_auth"
	ErrorUnknown       ErrorTag = "unknown"
)

// FieldKind describes how a front end should render a form field.
type FieldKind int

const (
	// FieldKindText is a plain text input.
	FieldKindText FieldKind = iota
	// FieldKindSecret is a masked input whose value is never echoed.
	FieldKindSecret
	// FieldKindChoice is a single selection from Choices.
	FieldKindChoice
)

// Field describes one input the current step requires.
type Field struct {
	Name    string
	Kind    FieldKind
	Default string
	Choices []string
}

// FormRequest describes the form a front end should present next.
// Error carries the tag of the previous attempt when the flow returned to
// the auth-type choice after a failure.
type FormRequest struct {
	Step   Step
	Fields []Field
	Error  ErrorTag
}

// EntryResult describes the persisted entry after a successful run.
type EntryResult struct {
	Title  string
	Config LinkConfiguration
}

// Result is the outcome of a credential submission. Exactly one of Form
// (re-presented auth choice on failure) or Entry (success) is set.
type Result struct {
	Form  *FormRequest
	Entry *EntryResult
}

// Options tune flow behavior. The zero value is completed by New with the
// defaults above.
type Options struct {
	// ValidateTimeout bounds the validation call. Defaults to
	// DefaultValidateTimeout.
	ValidateTimeout time.Duration

	// MinAPIVersion is the minimum accepted printer API version.
	// Defaults to MinAPIVersion.
	MinAPIVersion string

	// SkipVersionCheck disables minimum-version enforcement. Off by
	// default; kept as a knob because some printer firmwares misreport
	// their API version.
	SkipVersionCheck bool
}

// DefaultOptions returns the options used by the interactive wizard.
func DefaultOptions() Options {
	return Options{
		ValidateTimeout: DefaultValidateTimeout,
		MinAPIVersion:   MinAPIVersion,
	}
}

// Flow is one interactive setup session. It holds only the step currently
// awaiting input and the chosen auth type; submitted credentials are used
// for a single validation attempt and then discarded.
type Flow struct {
	client DeviceClient
	store  EntryStore

	timeout    time.Duration
	minVersion *goversion.Version
	skipCheck  bool

	step     Step
	authType AuthType
}

// New creates a flow starting at the auth-type choice.
func New(client DeviceClient, store EntryStore, opts Options) (*Flow, error) {
	if client == nil {
		return nil, errors.New("linkflow: nil device client")
	}
	if store == nil {
		return nil, errors.New("linkflow: nil entry store")
	}

	if opts.ValidateTimeout <= 0 {
		opts.ValidateTimeout = DefaultValidateTimeout
	}
	if opts.MinAPIVersion == "" {
		opts.MinAPIVersion = MinAPIVersion
	}

	min, err := goversion.NewVersion(opts.MinAPIVersion)
	if err != nil {
		return nil, fmt.Errorf("linkflow: invalid minimum API version %q: %w", opts.MinAPIVersion, err)
	}

	return &Flow{
		client:     client,
		store:      store,
		timeout:    opts.ValidateTimeout,
		minVersion: min,
		skipCheck:  opts.SkipVersionCheck,
		step:       StepAuthChoice,
	}, nil
}

// Step returns the step currently awaiting input.
func (f *Flow) Step() Step {
	return f.step
}

// AuthType returns the auth type chosen for the current run. Only
// meaningful once the flow has moved past the auth-type choice.
func (f *Flow) AuthType() AuthType {
	return f.authType
}

// Start returns the form request for the auth-type choice. No side effects.
func (f *Flow) Start() *FormRequest {
	return f.authChoiceForm(ErrorNone)
}

// ChooseAuthType transitions to the credential-collection step matching
// the choice and returns the form request for that step.
func (f *Flow) ChooseAuthType(choice AuthType) (*FormRequest, error) {
	if f.step != StepAuthChoice {
		return nil, fmt.Errorf("linkflow: auth type chosen during step %q", f.step)
	}
	if !choice.Valid() {
		return nil, fmt.Errorf("linkflow: unknown auth type %q", choice)
	}

	f.authType = choice

	if choice == AuthTypeDigest {
		f.step = StepDigestCredentials
		return &FormRequest{
			Step: StepDigestCredentials,
			Fields: []Field{
				{Name: FieldHost, Kind: FieldKindText},
				{Name: FieldUser, Kind: FieldKindText},
				{Name: FieldPassword, Kind: FieldKindSecret},
			},
		}, nil
	}

	f.step = StepAPIKey
	return &FormRequest{
		Step: StepAPIKey,
		Fields: []Field{
			{Name: FieldHost, Kind: FieldKindText},
			{Name: FieldAPIKey, Kind: FieldKindSecret},
		},
	}, nil
}

// Back abandons the credential step and returns to the auth-type choice.
// Submitted nothing, so no error tag is carried.
func (f *Flow) Back() *FormRequest {
	if f.step == StepDigestCredentials || f.step == StepAPIKey {
		f.step = StepAuthChoice
		f.authType = ""
	}
	return f.authChoiceForm(ErrorNone)
}

// SubmitCredentials normalizes the host, validates the resulting
// configuration against the printer and persists an entry on success.
// On failure the returned Result carries the auth-choice form annotated
// with the error tag; the submitted fields are discarded either way.
func (f *Flow) SubmitCredentials(ctx context.Context, fields map[string]string) (*Result, error) {
	var auth AuthConfig

	switch f.step {
	case StepDigestCredentials:
		auth = DigestAuth(fields[FieldUser], fields[FieldPassword])
	case StepAPIKey:
		auth = APIKeyAuth(fields[FieldAPIKey])
	default:
		return nil, fmt.Errorf("linkflow: credentials submitted during step %q", f.step)
	}

	cfg := LinkConfiguration{
		Host: NormalizeHost(fields[FieldHost]),
		Auth: auth,
	}

	info, tag := f.validate(ctx, cfg)
	if tag != ErrorNone {
		f.step = StepAuthChoice
		f.authType = ""
		return &Result{Form: f.authChoiceForm(tag)}, nil
	}

	if err := f.store.Create(info.Hostname, cfg); err != nil {
		logging.Error("Failed to persist link entry",
			zap.String("host", cfg.Host),
			zap.Error(err),
		)
		f.step = StepAuthChoice
		f.authType = ""
		return &Result{Form: f.authChoiceForm(ErrorUnknown)}, nil
	}

	f.step = StepComplete
	return &Result{Entry: &EntryResult{Title: info.Hostname, Config: cfg}}, nil
}

// validate performs the single timeout-bounded validation call and maps
// the outcome to an error tag.
func (f *Flow) validate(ctx context.Context, cfg LinkConfiguration) (*VersionInfo, ErrorTag) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	info, err := f.client.Validate(ctx, cfg)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAuth):
			logging.Info("Printer rejected credentials", zap.String("target", cfg.Redacted()))
			return nil, ErrorInvalidAuth
		case errors.Is(err, ErrCannotConnect),
			errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, context.Canceled):
			logging.Error("Could not connect to printer",
				zap.String("target", cfg.Redacted()),
				zap.Error(err),
			)
			return nil, ErrorCannotConnect
		default:
			logging.Error("Unexpected error validating printer",
				zap.String("target", cfg.Redacted()),
				zap.Error(err),
			)
			return nil, ErrorUnknown
		}
	}

	if !f.supported(info.API) {
		logging.Info("Printer API version not supported",
			zap.String("target", cfg.Redacted()),
			zap.String("api", info.API),
			zap.String("min", f.minVersion.String()),
		)
		return nil, ErrorNotSupported
	}

	return info, ErrorNone
}

// supported reports whether the reported API version meets the minimum.
// Unparseable versions are never supported.
func (f *Flow) supported(api string) bool {
	if f.skipCheck {
		return true
	}
	v, err := goversion.NewVersion(api)
	if err != nil {
		return false
	}
	return v.GreaterThanOrEqual(f.minVersion)
}

func (f *Flow) authChoiceForm(tag ErrorTag) *FormRequest {
	return &FormRequest{
		Step: StepAuthChoice,
		Fields: []Field{
			{
				Name:    FieldAuthType,
				Kind:    FieldKindChoice,
				Default: string(AuthTypeDigest),
				Choices: []string{string(AuthTypeDigest), string(AuthTypeAPIKey)},
			},
		},
		Error: tag,
	}
}
