package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/model"
)

type fakeEvents struct {
	appended  []model.SecurityEvent
	appendErr error
}

func (f *fakeEvents) Append(_ context.Context, e *model.SecurityEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, *e)
	return nil
}

func TestRecord_SuccessEvent(t *testing.T) {
	t.Parallel()

	events := &fakeEvents{}
	l := NewLog(events, zap.NewNop())

	uid := uuid.Must(uuid.NewV4())
	l.Record(context.Background(), EventLoginSuccess, &uid, "login succeeded", true)

	if len(events.appended) != 1 {
		t.Fatalf("appended %d events, want 1", len(events.appended))
	}
	e := events.appended[0]
	if e.Suspicious || e.ThreatScore != ThreatScoreNone || e.Severity != SeverityInfo {
		t.Fatalf("success event flags wrong: %+v", e)
	}
	if e.ID == "" || e.UserID == nil || *e.UserID != uid {
		t.Fatalf("event identity wrong: %+v", e)
	}
}

func TestRecord_FailureEvent(t *testing.T) {
	t.Parallel()

	events := &fakeEvents{}
	l := NewLog(events, zap.NewNop())

	l.Record(context.Background(), EventLoginFailed, nil, "login failed", false)

	e := events.appended[0]
	if !e.Suspicious || e.ThreatScore != ThreatScoreFailedAttempt || e.Severity != SeverityWarning {
		t.Fatalf("failure event flags wrong: %+v", e)
	}
}

func TestRecord_AppendFailureDoesNotPanic(t *testing.T) {
	t.Parallel()

	l := NewLog(&fakeEvents{appendErr: errors.New("boom")}, zap.NewNop())
	l.Record(context.Background(), EventSignupFailed, nil, "signup failed", false)
}
