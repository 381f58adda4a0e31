// internal/app/system/signin/signin.go
//
// The sign-in reconciler. Authenticates an email/password pair against the
// identity provider, then reconciles the user record with the provider's
// auth id: records created by an admin are keyed by a provisional local id
// and migrated to the auth-id key on first successful sign-in, at which
// point the account transitions from pending to active.
package signin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/deskhubhq/deskhub/internal/app/system/identity"
	"github.com/deskhubhq/deskhub/internal/app/system/metrics"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/app/system/status"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

// Classified sign-in failures. Anything else coming out of SignIn wraps
// ErrUnexpected with the underlying cause.
var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords;
	// callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrActivationFailed means the provider rejected creation of the
	// pending account's credential for a reason other than "already exists".
	ErrActivationFailed = errors.New("account activation failed")

	// ErrUnexpected wraps store or provider faults not otherwise classified.
	ErrUnexpected = errors.New("sign-in failed unexpectedly")
)

// UserDirectory is the slice of the users store the reconciler needs.
type UserDirectory interface {
	// FindAllByEmail returns every user record with the given email. More
	// than one is a data-integrity anomaly the caller handles.
	FindAllByEmail(ctx context.Context, email string) ([]models.User, error)

	// Insert creates a record under its ID; fails if the ID exists.
	Insert(ctx context.Context, u models.User) error

	// Delete removes the record with the given ID.
	Delete(ctx context.Context, id string) error

	// Activate sets status=active and clears the temporary password on the
	// record with the given ID.
	Activate(ctx context.Context, id string) error
}

// Profile is the normalized result of a successful sign-in; it carries
// everything the session and the role router need.
type Profile struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Project *string `json:"project"`
}

// Reconciler performs sign-in against a user directory and an identity
// provider. All dependencies are interfaces so the reconciliation logic is
// testable without a database.
type Reconciler struct {
	Dir      UserDirectory
	Provider identity.Provider
	Log      *zap.Logger
}

func NewReconciler(dir UserDirectory, provider identity.Provider, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{Dir: dir, Provider: provider, Log: log}
}

// SignIn authenticates email/password and returns the normalized profile.
//
// The steps run strictly in order: directory lookup, pending-credential
// provisioning, provider authentication, identifier reconciliation, profile
// construction. Each depends on the one before it.
func (s *Reconciler) SignIn(ctx context.Context, email, password string) (Profile, error) {
	email = normalize.Email(email)

	// 1. Locate the user record. An unknown email fails exactly like a bad
	// password so sign-in never leaks which emails are registered.
	records, err := s.Dir.FindAllByEmail(ctx, email)
	if err != nil {
		metrics.SignInTotal.WithLabelValues("error").Inc()
		return Profile{}, fmt.Errorf("%w: user lookup: %v", ErrUnexpected, err)
	}
	if len(records) == 0 {
		metrics.SignInTotal.WithLabelValues("invalid_credentials").Inc()
		return Profile{}, ErrInvalidCredentials
	}
	if len(records) > 1 {
		s.Log.Warn("multiple user records for one email",
			zap.String("email", email),
			zap.Int("count", len(records)))
	}
	rec := records[0]

	// 2. A pending record may not have a provider credential yet: the admin
	// created it with a temporary password before the person ever signed in.
	// Provision the credential now, idempotently.
	if rec.Status == status.Pending && rec.TempPassword != "" {
		methods, err := s.Provider.MethodsForEmail(ctx, email)
		if err != nil {
			metrics.SignInTotal.WithLabelValues("error").Inc()
			return Profile{}, fmt.Errorf("%w: credential check: %v", ErrUnexpected, err)
		}
		if len(methods) == 0 {
			if _, err := s.Provider.CreateAccount(ctx, email, rec.TempPassword); err != nil {
				// Already-exists means a prior run got this far; carry on.
				if !errors.Is(err, identity.ErrEmailInUse) {
					s.Log.Error("provisioning credential for pending account failed",
						zap.String("email", email),
						zap.Error(err))
					metrics.SignInTotal.WithLabelValues("activation_failed").Inc()
					return Profile{}, fmt.Errorf("%w: %v", ErrActivationFailed, err)
				}
			}
		}
	}

	// 3–4. Authenticate with the password the user typed, never the
	// temporary one, and obtain the provider's auth id.
	authID, err := s.Provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			metrics.SignInTotal.WithLabelValues("invalid_credentials").Inc()
			return Profile{}, ErrInvalidCredentials
		}
		metrics.SignInTotal.WithLabelValues("error").Inc()
		return Profile{}, fmt.Errorf("%w: provider sign-in: %v", ErrUnexpected, err)
	}

	// 5. Reconcile the record key with the auth id.
	rec, err = s.reconcile(ctx, rec, authID)
	if err != nil {
		metrics.SignInTotal.WithLabelValues("error").Inc()
		return Profile{}, err
	}

	metrics.SignInTotal.WithLabelValues("success").Inc()
	return Profile{
		ID:      rec.ID,
		Email:   rec.Email,
		Name:    rec.FullName(),
		Role:    rec.Role,
		Project: rec.Project,
	}, nil
}

// reconcile migrates a record keyed by a provisional id to the auth-id key,
// or activates it in place if the keys already match. Migration is two
// single-document writes with no transaction: if the insert succeeds and the
// delete fails we are left with two records for one email. That outcome is
// logged distinctly and counted, never retried, since re-running the insert
// without a transaction is itself unsafe.
func (s *Reconciler) reconcile(ctx context.Context, rec models.User, authID string) (models.User, error) {
	if rec.ID == authID {
		if rec.Status == status.Pending {
			if err := s.Dir.Activate(ctx, rec.ID); err != nil {
				return rec, fmt.Errorf("%w: activate: %v", ErrUnexpected, err)
			}
			rec.Status = status.Active
			rec.TempPassword = ""
			metrics.ActivationsTotal.Inc()
		}
		return rec, nil
	}

	migrated := rec
	migrated.ID = authID
	migrated.Status = status.Active
	migrated.TempPassword = ""
	migrated.UpdatedAt = time.Now().UTC()

	if err := s.Dir.Insert(ctx, migrated); err != nil {
		return rec, fmt.Errorf("%w: migrate insert: %v", ErrUnexpected, err)
	}
	if err := s.Dir.Delete(ctx, rec.ID); err != nil {
		// The new canonical record exists; the provisional one is orphaned.
		s.Log.Error("partial consistency: provisional user record not deleted after migration",
			zap.String("email", rec.Email),
			zap.String("provisional_id", rec.ID),
			zap.String("auth_id", authID),
			zap.Error(err))
		metrics.PartialConsistencyTotal.Inc()
	}
	metrics.ActivationsTotal.Inc()
	return migrated, nil
}
