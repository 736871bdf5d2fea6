package linkflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClient implements DeviceClient for tests.
type fakeClient struct {
	info    *VersionInfo
	err     error
	lastCfg LinkConfiguration
	block   bool // wait for ctx cancellation instead of answering
}

func (c *fakeClient) Validate(ctx context.Context, cfg LinkConfiguration) (*VersionInfo, error) {
	c.lastCfg = cfg
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.info, nil
}

// fakeStore implements EntryStore for tests.
type fakeStore struct {
	err     error
	created bool
	title   string
	cfg     LinkConfiguration
}

func (s *fakeStore) Create(title string, cfg LinkConfiguration) error {
	if s.err != nil {
		return s.err
	}
	s.created = true
	s.title = title
	s.cfg = cfg
	return nil
}

func newTestFlow(t *testing.T, client DeviceClient, store EntryStore, opts Options) *Flow {
	t.Helper()
	flow, err := New(client, store, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return flow
}

func TestStartPresentsAuthChoice(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	form := flow.Start()

	if form.Step != StepAuthChoice {
		t.Errorf("Step = %q, want %q", form.Step, StepAuthChoice)
	}
	if form.Error != ErrorNone {
		t.Errorf("Error = %q, want none", form.Error)
	}
	if len(form.Fields) != 1 || form.Fields[0].Name != FieldAuthType {
		t.Fatalf("Fields = %v, want single authType field", form.Fields)
	}
	if form.Fields[0].Default != string(AuthTypeDigest) {
		t.Errorf("Default = %q, want %q", form.Fields[0].Default, AuthTypeDigest)
	}
}

func TestChooseAuthTypeDigest(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	form, err := flow.ChooseAuthType(AuthTypeDigest)
	if err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	if form.Step != StepDigestCredentials {
		t.Errorf("Step = %q, want %q", form.Step, StepDigestCredentials)
	}

	names := fieldNames(form)
	want := []string{FieldHost, FieldUser, FieldPassword}
	if !equalStrings(names, want) {
		t.Errorf("Fields = %v, want %v", names, want)
	}
}

func TestChooseAuthTypeAPIKey(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	form, err := flow.ChooseAuthType(AuthTypeAPIKey)
	if err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	if form.Step != StepAPIKey {
		t.Errorf("Step = %q, want %q", form.Step, StepAPIKey)
	}

	names := fieldNames(form)
	want := []string{FieldHost, FieldAPIKey}
	if !equalStrings(names, want) {
		t.Errorf("Fields = %v, want %v", names, want)
	}
}

func TestChooseAuthTypeRejectsUnknown(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	if _, err := flow.ChooseAuthType(AuthType("basicAuth")); err == nil {
		t.Error("ChooseAuthType() should reject unknown auth type")
	}
}

func TestChooseAuthTypeRejectsWrongStep(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	if _, err := flow.ChooseAuthType(AuthTypeDigest); err != nil {
		t.Fatalf("first ChooseAuthType() error = %v", err)
	}
	if _, err := flow.ChooseAuthType(AuthTypeDigest); err == nil {
		t.Error("ChooseAuthType() should fail outside auth choice step")
	}
}

func TestSubmitCredentialsSuccess(t *testing.T) {
	client := &fakeClient{info: &VersionInfo{API: "2.0.0", Hostname: "PrusaMINI"}}
	store := &fakeStore{}
	flow := newTestFlow(t, client, store, Options{})

	if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	result, err := flow.SubmitCredentials(context.Background(), map[string]string{
		FieldHost:   "myprinter",
		FieldAPIKey: "abc",
	})
	if err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	if result.Entry == nil {
		t.Fatal("result should carry an entry")
	}
	if result.Entry.Title != "PrusaMINI" {
		t.Errorf("Title = %q, want PrusaMINI", result.Entry.Title)
	}
	if result.Entry.Config.Host != "http://myprinter" {
		t.Errorf("Host = %q, want http://myprinter", result.Entry.Config.Host)
	}
	if result.Entry.Config.Auth.Type != AuthTypeAPIKey || result.Entry.Config.Auth.APIKey != "abc" {
		t.Errorf("Auth = %+v, want apiKeyAuth with key abc", result.Entry.Config.Auth)
	}

	if !store.created {
		t.Fatal("entry should have been persisted")
	}
	if store.title != "PrusaMINI" {
		t.Errorf("stored title = %q, want PrusaMINI", store.title)
	}
	if flow.Step() != StepComplete {
		t.Errorf("Step = %q, want %q", flow.Step(), StepComplete)
	}
}

func TestSubmitCredentialsDigestVariant(t *testing.T) {
	client := &fakeClient{info: &VersionInfo{API: "2.1.0", Hostname: "PrusaXL"}}
	store := &fakeStore{}
	flow := newTestFlow(t, client, store, Options{})

	if _, err := flow.ChooseAuthType(AuthTypeDigest); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	result, err := flow.SubmitCredentials(context.Background(), map[string]string{
		FieldHost:     "https://printer.lan/",
		FieldUser:     "maker",
		FieldPassword: "hunter2",
	})
	if err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	if result.Entry == nil {
		t.Fatal("result should carry an entry")
	}
	cfg := result.Entry.Config
	if cfg.Host != "https://printer.lan" {
		t.Errorf("Host = %q, want https://printer.lan", cfg.Host)
	}
	if cfg.Auth.Type != AuthTypeDigest || cfg.Auth.User != "maker" || cfg.Auth.Password != "hunter2" {
		t.Errorf("Auth = %+v, want digest maker/hunter2", cfg.Auth)
	}
}

func TestSubmitCredentialsErrorTags(t *testing.T) {
	tests := []struct {
		name string
		info *VersionInfo
		err  error
		want ErrorTag
	}{
		{"version below minimum", &VersionInfo{API: "1.2.0", Hostname: "old"}, nil, ErrorNotSupported},
		{"unparseable version", &VersionInfo{API: "not a version", Hostname: "odd"}, nil, ErrorNotSupported},
		{"transport error", nil, ErrCannotConnect, ErrorCannotConnect},
		{"wrapped transport error", nil, errors.Join(errors.New("dial tcp"), ErrCannotConnect), ErrorCannotConnect},
		{"auth rejection", nil, ErrInvalidAuth, ErrorInvalidAuth},
		{"unexpected error", nil, errors.New("boom"), ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{info: tt.info, err: tt.err}
			store := &fakeStore{}
			flow := newTestFlow(t, client, store, Options{})

			if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
				t.Fatalf("ChooseAuthType() error = %v", err)
			}

			result, err := flow.SubmitCredentials(context.Background(), map[string]string{
				FieldHost:   "myprinter",
				FieldAPIKey: "abc",
			})
			if err != nil {
				t.Fatalf("SubmitCredentials() error = %v", err)
			}

			if result.Form == nil {
				t.Fatal("result should re-present a form")
			}
			if result.Form.Step != StepAuthChoice {
				t.Errorf("Step = %q, want %q", result.Form.Step, StepAuthChoice)
			}
			if result.Form.Error != tt.want {
				t.Errorf("Error = %q, want %q", result.Form.Error, tt.want)
			}
			if store.created {
				t.Error("no entry should be created on failure")
			}
			if flow.Step() != StepAuthChoice {
				t.Errorf("flow step = %q, want back at %q", flow.Step(), StepAuthChoice)
			}
		})
	}
}

func TestSubmitCredentialsTimeout(t *testing.T) {
	client := &fakeClient{block: true}
	store := &fakeStore{}
	flow := newTestFlow(t, client, store, Options{ValidateTimeout: 20 * time.Millisecond})

	if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	start := time.Now()
	result, err := flow.SubmitCredentials(context.Background(), map[string]string{
		FieldHost:   "myprinter",
		FieldAPIKey: "abc",
	})
	if err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("validation took %v, timeout not applied", elapsed)
	}

	if result.Form == nil || result.Form.Error != ErrorCannotConnect {
		t.Fatalf("result = %+v, want auth choice form tagged cannot_connect", result)
	}
}

func TestSubmitCredentialsStoreFailure(t *testing.T) {
	client := &fakeClient{info: &VersionInfo{API: "2.0.0", Hostname: "PrusaMINI"}}
	store := &fakeStore{err: errors.New("disk full")}
	flow := newTestFlow(t, client, store, Options{})

	if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	result, err := flow.SubmitCredentials(context.Background(), map[string]string{
		FieldHost:   "myprinter",
		FieldAPIKey: "abc",
	})
	if err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	if result.Form == nil || result.Form.Error != ErrorUnknown {
		t.Fatalf("result = %+v, want auth choice form tagged unknown", result)
	}
}

func TestSubmitCredentialsRejectsWrongStep(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	if _, err := flow.SubmitCredentials(context.Background(), nil); err == nil {
		t.Error("SubmitCredentials() should fail before auth type is chosen")
	}
}

func TestBackReturnsToAuthChoice(t *testing.T) {
	flow := newTestFlow(t, &fakeClient{}, &fakeStore{}, Options{})

	if _, err := flow.ChooseAuthType(AuthTypeDigest); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	form := flow.Back()
	if form.Step != StepAuthChoice || form.Error != ErrorNone {
		t.Errorf("Back() form = %+v, want untagged auth choice", form)
	}
	if flow.Step() != StepAuthChoice {
		t.Errorf("Step() = %q after Back(), want %q", flow.Step(), StepAuthChoice)
	}

	// The choice can be made again after going back
	if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
		t.Errorf("ChooseAuthType() after Back() error = %v", err)
	}
}

func TestSkipVersionCheck(t *testing.T) {
	client := &fakeClient{info: &VersionInfo{API: "1.0.0", Hostname: "legacy"}}
	store := &fakeStore{}
	flow := newTestFlow(t, client, store, Options{SkipVersionCheck: true})

	if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}

	result, err := flow.SubmitCredentials(context.Background(), map[string]string{
		FieldHost:   "myprinter",
		FieldAPIKey: "abc",
	})
	if err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	if result.Entry == nil {
		t.Fatal("entry should be created when version check is skipped")
	}
}

func TestNormalizedHostReachesClient(t *testing.T) {
	client := &fakeClient{info: &VersionInfo{API: "2.0.0", Hostname: "PrusaMINI"}}
	flow := newTestFlow(t, client, &fakeStore{}, Options{})

	if _, err := flow.ChooseAuthType(AuthTypeAPIKey); err != nil {
		t.Fatalf("ChooseAuthType() error = %v", err)
	}
	if _, err := flow.SubmitCredentials(context.Background(), map[string]string{
		FieldHost:   "myprinter/",
		FieldAPIKey: "abc",
	}); err != nil {
		t.Fatalf("SubmitCredentials() error = %v", err)
	}

	if client.lastCfg.Host != "http://myprinter" {
		t.Errorf("client saw host %q, want http://myprinter", client.lastCfg.Host)
	}
}

func fieldNames(form *FormRequest) []string {
	names := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
