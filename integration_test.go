//go:build integration
// +build integration

package rebblitdb_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rebblit/rebblit-db/internal/auth"
	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/internal/store"
	"github.com/rebblit/rebblit-db/pkg/migration"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// setupTestStore starts a PostgreSQL container, applies the full schema and
// returns a ready store.
func setupTestStore(t *testing.T) (*store.Store, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("rebblit_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	tables, err := models.Tables()
	if err != nil {
		t.Fatalf("Failed to build table metadata: %v", err)
	}

	planner := migration.NewPlanner()
	upSQL, downSQL, err := planner.GenerateSchema(tables)
	if err != nil {
		t.Fatalf("Failed to generate schema: %v", err)
	}

	executor := migration.NewExecutor(pool)
	if err := executor.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize migrations: %v", err)
	}
	mig := migration.Migration{
		Version: "00000000000001",
		Name:    "init",
		UpSQL:   upSQL,
		DownSQL: downSQL,
	}
	if err := executor.Apply(ctx, mig, false); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	st, err := store.New(runtime.NewDB(pool))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return st, pool
}

func seedUser(t *testing.T, st *store.Store, email, username string) *models.User {
	t.Helper()
	user, err := st.Users.Create(context.Background(), models.User{
		Name:     "Test User",
		Email:    email,
		Username: username,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func TestIntegrationUserLifecycle(t *testing.T) {
	st, _ := setupTestStore(t)
	ctx := context.Background()

	user := seedUser(t, st, "amira@example.com", "amira")

	t.Run("defaults applied", func(t *testing.T) {
		got, err := st.Users.ByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.EmailVerified {
			t.Error("expected email_verified to default to false")
		}
		if got.ProfileType != models.ProfileTypeUser {
			t.Errorf("expected profile_type user, got %s", got.ProfileType)
		}
		if got.FollowersCount != 0 || got.FollowingCount != 0 || got.SavesCount != 0 || got.PostsCount != 0 {
			t.Error("expected counters to default to zero")
		}
		if got.ProfileStatus.Bann || got.ProfileStatus.Suspended {
			t.Errorf("unexpected profile_status default: %+v", got.ProfileStatus)
		}
		if got.Privacy == nil || *got.Privacy != models.DefaultPrivacySettings() {
			t.Errorf("unexpected privacy defaults: %+v", got.Privacy)
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set by the database")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := st.Users.Create(ctx, models.User{
			Name:     "Other",
			Email:    "amira@example.com",
			Username: "other",
		})
		if !errors.Is(err, runtime.ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey, got %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := st.Users.Create(ctx, models.User{
			Name:     "Other",
			Email:    "other@example.com",
			Username: "amira",
		})
		if !errors.Is(err, runtime.ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey, got %v", err)
		}
	})

	t.Run("partial update preserves other fields", func(t *testing.T) {
		bio := "photographer"
		updated, err := st.Users.Update(ctx, user.ID, models.UpdateUser{
			ProfileBiography: &bio,
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.ProfileBiography == nil || *updated.ProfileBiography != "photographer" {
			t.Errorf("unexpected biography: %v", updated.ProfileBiography)
		}
		if updated.Email != "amira@example.com" || updated.Username != "amira" {
			t.Error("expected untouched fields to be preserved")
		}
	})

	t.Run("save and unsave posts", func(t *testing.T) {
		post, err := st.Posts.Create(ctx, models.Post{UserID: user.ID})
		if err != nil {
			t.Fatalf("Failed to create post: %v", err)
		}

		if err := st.Users.SavePost(ctx, user.ID, post.ID); err != nil {
			t.Fatalf("SavePost failed: %v", err)
		}
		// Saving twice must not duplicate the entry.
		if err := st.Users.SavePost(ctx, user.ID, post.ID); err != nil {
			t.Fatalf("SavePost failed: %v", err)
		}

		got, err := st.Users.ByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if len(got.SavedPostIDs) != 1 || got.SavedPostIDs[0] != post.ID {
			t.Errorf("unexpected saved posts: %v", got.SavedPostIDs)
		}

		if err := st.Users.UnsavePost(ctx, user.ID, post.ID); err != nil {
			t.Fatalf("UnsavePost failed: %v", err)
		}
		got, err = st.Users.ByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if len(got.SavedPostIDs) != 0 {
			t.Errorf("expected empty saved posts, got %v", got.SavedPostIDs)
		}
	})

	t.Run("explicit all-false privacy is stored as given", func(t *testing.T) {
		created, err := st.Users.Create(ctx, models.User{
			Name:     "Locked Down",
			Email:    "locked@example.com",
			Username: "locked",
			Privacy:  &models.PrivacySettings{},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err := st.Users.ByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.Privacy == nil {
			t.Fatal("expected privacy to be present")
		}
		if got.Privacy.AcceptComments || got.Privacy.AcceptSharing {
			t.Errorf("expected all-false privacy to survive the column default, got %+v", got.Privacy)
		}
	})

	t.Run("lookup by email and username", func(t *testing.T) {
		if _, err := st.Users.ByEmail(ctx, "amira@example.com"); err != nil {
			t.Errorf("ByEmail failed: %v", err)
		}
		if _, err := st.Users.ByUsername(ctx, "amira"); err != nil {
			t.Errorf("ByUsername failed: %v", err)
		}
		if _, err := st.Users.ByEmail(ctx, "missing@example.com"); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestIntegrationCascades(t *testing.T) {
	st, _ := setupTestStore(t)
	ctx := context.Background()

	user := seedUser(t, st, "cascade@example.com", "cascade")

	session, err := st.Sessions.Create(ctx, models.Session{
		Token:     "tok_cascade",
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	password := "hashed"
	account, err := st.Accounts.Create(ctx, models.Account{
		AccountID:  user.ID,
		ProviderID: "credential",
		UserID:     user.ID,
		Password:   &password,
	})
	if err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	post, err := st.Posts.Create(ctx, models.Post{UserID: user.ID})
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	media, err := st.PostMedia.Create(ctx, models.PostMedia{
		PostID:       post.ID,
		ThumbnailURL: "https://cdn.example.com/thumb.jpg",
		OriginalURL:  "https://cdn.example.com/orig.mp4",
		MediaType:    models.MediaTypeVideo,
		OriginalInfo: models.OriginalMediaInfo{Height: 1080, Width: 1920, AspectRatio: 1.78},
		VideoInfo:    &models.VideoInfo{DurationMillis: 15000},
	})
	if err != nil {
		t.Fatalf("Failed to create media: %v", err)
	}

	apiKey, err := st.ApiKeys.Create(ctx, models.ApiKey{
		Key:    "rbl_cascade_key",
		UserID: user.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create api key: %v", err)
	}

	t.Run("video info round trip", func(t *testing.T) {
		got, err := st.PostMedia.ByID(ctx, media.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.VideoInfo == nil || got.VideoInfo.DurationMillis != 15000 {
			t.Errorf("unexpected video info: %+v", got.VideoInfo)
		}
	})

	t.Run("media availability defaults and explicit false", func(t *testing.T) {
		got, err := st.PostMedia.ByID(ctx, media.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.MediaAvailability == nil || !*got.MediaAvailability {
			t.Errorf("expected omitted availability to default to true, got %v", got.MediaAvailability)
		}

		unavailable := false
		hidden, err := st.PostMedia.Create(ctx, models.PostMedia{
			PostID:            post.ID,
			ThumbnailURL:      "https://cdn.example.com/hidden.jpg",
			OriginalURL:       "https://cdn.example.com/hidden-orig.jpg",
			MediaType:         models.MediaTypePicture,
			MediaAvailability: &unavailable,
			OriginalInfo:      models.OriginalMediaInfo{Height: 100, Width: 100, AspectRatio: 1},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err = st.PostMedia.ByID(ctx, hidden.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.MediaAvailability == nil || *got.MediaAvailability {
			t.Errorf("expected explicit false to survive the column default, got %v", got.MediaAvailability)
		}
	})

	t.Run("post delete removes media", func(t *testing.T) {
		extra, err := st.Posts.Create(ctx, models.Post{UserID: user.ID})
		if err != nil {
			t.Fatalf("Failed to create post: %v", err)
		}
		extraMedia, err := st.PostMedia.Create(ctx, models.PostMedia{
			PostID:       extra.ID,
			ThumbnailURL: "https://cdn.example.com/t.jpg",
			OriginalURL:  "https://cdn.example.com/o.jpg",
			MediaType:    models.MediaTypePicture,
			OriginalInfo: models.OriginalMediaInfo{Height: 100, Width: 100, AspectRatio: 1},
		})
		if err != nil {
			t.Fatalf("Failed to create media: %v", err)
		}

		if err := st.Posts.Delete(ctx, extra.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := st.PostMedia.ByID(ctx, extraMedia.ID); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected cascaded media delete, got %v", err)
		}
	})

	t.Run("user delete fans out", func(t *testing.T) {
		if err := st.Users.Delete(ctx, user.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := st.Sessions.ByID(ctx, session.ID); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected session cascade, got %v", err)
		}
		if _, err := st.Accounts.ByID(ctx, account.ID); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected account cascade, got %v", err)
		}
		if _, err := st.Posts.ByID(ctx, post.ID); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected post cascade, got %v", err)
		}
		if _, err := st.PostMedia.ByID(ctx, media.ID); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected media cascade, got %v", err)
		}
		if _, err := st.ApiKeys.ByID(ctx, apiKey.ID); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected api key cascade, got %v", err)
		}
	})

	t.Run("delete absent user", func(t *testing.T) {
		if err := st.Users.Delete(ctx, "missing"); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestIntegrationCounters(t *testing.T) {
	st, _ := setupTestStore(t)
	ctx := context.Background()

	user := seedUser(t, st, "counter@example.com", "counter")
	post, err := st.Posts.Create(ctx, models.Post{UserID: user.ID})
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	t.Run("concurrent increments", func(t *testing.T) {
		const workers = 20
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				if err := st.Posts.AddLikes(ctx, post.ID, 1); err != nil {
					t.Errorf("AddLikes failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := st.Posts.ByID(ctx, post.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.LikesCount != workers {
			t.Errorf("expected %d likes, got %d", workers, got.LikesCount)
		}
	})

	t.Run("decrement clamps at zero", func(t *testing.T) {
		if err := st.Posts.AddLikes(ctx, post.ID, -1000); err != nil {
			t.Fatalf("AddLikes failed: %v", err)
		}
		got, err := st.Posts.ByID(ctx, post.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.LikesCount != 0 {
			t.Errorf("expected likes clamped at 0, got %d", got.LikesCount)
		}
	})

	t.Run("user counters", func(t *testing.T) {
		if err := st.Users.AddFollowers(ctx, user.ID, 3); err != nil {
			t.Fatalf("AddFollowers failed: %v", err)
		}
		if err := st.Users.AddFollowers(ctx, user.ID, -5); err != nil {
			t.Fatalf("AddFollowers failed: %v", err)
		}
		got, err := st.Users.ByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.FollowersCount != 0 {
			t.Errorf("expected followers clamped at 0, got %d", got.FollowersCount)
		}
	})

	t.Run("feed ordering", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if _, err := st.Posts.Create(ctx, models.Post{UserID: user.ID}); err != nil {
				t.Fatalf("Failed to create post: %v", err)
			}
		}
		feed, err := st.Posts.FeedByUser(ctx, user.ID, 2, 0)
		if err != nil {
			t.Fatalf("FeedByUser failed: %v", err)
		}
		if len(feed) != 2 {
			t.Fatalf("expected 2 posts, got %d", len(feed))
		}
		if feed[0].CreatedAt.Before(feed[1].CreatedAt) {
			t.Error("expected newest-first ordering")
		}
	})
}

func TestIntegrationApiKeysAndExpiry(t *testing.T) {
	st, _ := setupTestStore(t)
	ctx := context.Background()

	user := seedUser(t, st, "keys@example.com", "keys")

	t.Run("rate limit defaults from schema", func(t *testing.T) {
		key, err := st.ApiKeys.Create(ctx, models.ApiKey{
			Key:    "rbl_default_key",
			UserID: user.ID,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err := st.ApiKeys.ByID(ctx, key.ID)
		if err != nil {
			t.Fatalf("ByID failed: %v", err)
		}
		if got.RateLimitTimeWindow == nil || *got.RateLimitTimeWindow != 86400000 {
			t.Errorf("unexpected rate_limit_time_window: %v", got.RateLimitTimeWindow)
		}
		if got.RateLimitMax == nil || *got.RateLimitMax != 10 {
			t.Errorf("unexpected rate_limit_max: %v", got.RateLimitMax)
		}
		if got.Enabled == nil || !*got.Enabled {
			t.Errorf("expected key enabled by default, got %v", got.Enabled)
		}
		if got.RequestCount == nil || *got.RequestCount != 0 {
			t.Errorf("expected zero request count, got %v", got.RequestCount)
		}
	})

	t.Run("request accounting", func(t *testing.T) {
		key, err := st.ApiKeys.Create(ctx, models.ApiKey{
			Key:    "rbl_counted_key",
			UserID: user.ID,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := st.ApiKeys.RecordRequest(ctx, key.ID)
		if err != nil {
			t.Fatalf("RecordRequest failed: %v", err)
		}
		if got.RequestCount == nil || *got.RequestCount != 1 {
			t.Errorf("expected request count 1, got %v", got.RequestCount)
		}
		if got.LastRequest == nil {
			t.Error("expected last_request to be stamped")
		}

		got, err = st.ApiKeys.StartWindow(ctx, key.ID)
		if err != nil {
			t.Fatalf("StartWindow failed: %v", err)
		}
		if got.RequestCount == nil || *got.RequestCount != 1 {
			t.Errorf("expected window restart to reset count to 1, got %v", got.RequestCount)
		}
	})

	t.Run("expired session and verification cleanup", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		future := time.Now().UTC().Add(time.Hour)

		if _, err := st.Sessions.Create(ctx, models.Session{
			Token:     "tok_expired",
			UserID:    user.ID,
			ExpiresAt: past,
		}); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		live, err := st.Sessions.Create(ctx, models.Session{
			Token:     "tok_live",
			UserID:    user.ID,
			ExpiresAt: future,
		})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if _, err := st.Verifications.Create(ctx, models.Verification{
			Identifier: "sign-in-otp-keys@example.com",
			Value:      "123456",
			ExpiresAt:  past,
		}); err != nil {
			t.Fatalf("Failed to create verification: %v", err)
		}

		removed, err := st.Sessions.DeleteExpired(ctx)
		if err != nil {
			t.Fatalf("DeleteExpired failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 expired session removed, got %d", removed)
		}
		if _, err := st.Sessions.ByToken(ctx, "tok_live"); err != nil {
			t.Errorf("expected live session to survive, got %v", err)
		}
		if _, err := st.Sessions.ByID(ctx, live.ID); err != nil {
			t.Errorf("expected live session lookup to work, got %v", err)
		}

		removedVerifications, err := st.Verifications.DeleteExpired(ctx)
		if err != nil {
			t.Fatalf("DeleteExpired failed: %v", err)
		}
		if removedVerifications != 1 {
			t.Errorf("expected 1 expired verification removed, got %d", removedVerifications)
		}
	})
}

func TestIntegrationTransactions(t *testing.T) {
	st, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("commit persists writes", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx *store.Store) error {
			_, err := tx.Users.Create(ctx, models.User{
				Name:     "Committed",
				Email:    "committed@example.com",
				Username: "committed",
			})
			return err
		})
		if err != nil {
			t.Fatalf("WithTx failed: %v", err)
		}
		if _, err := st.Users.ByEmail(ctx, "committed@example.com"); err != nil {
			t.Errorf("expected committed user to be readable, got %v", err)
		}
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx *store.Store) error {
			if _, err := tx.Users.Create(ctx, models.User{
				Name:     "Ghost",
				Email:    "ghost@example.com",
				Username: "ghost",
			}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom error, got %v", err)
		}
		if _, err := st.Users.ByEmail(ctx, "ghost@example.com"); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected rolled-back user to be absent, got %v", err)
		}
	})

	t.Run("failed second insert leaves no partial state", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx *store.Store) error {
			user, err := tx.Users.Create(ctx, models.User{
				Name:     "Pending",
				Email:    "pending@example.com",
				Username: "pending",
			})
			if err != nil {
				return err
			}
			_, err = tx.Accounts.Create(ctx, models.Account{
				AccountID:  user.ID,
				ProviderID: "credential",
				UserID:     "no-such-user",
			})
			return err
		})
		if !errors.Is(err, runtime.ErrForeignKeyViolation) {
			t.Fatalf("expected foreign key violation, got %v", err)
		}
		if _, err := st.Users.ByEmail(ctx, "pending@example.com"); !errors.Is(err, runtime.ErrNotFound) {
			t.Errorf("expected no user row after the rollback, got %v", err)
		}

		// A retry with the same email must not hit a unique violation.
		if _, err := st.Users.Create(ctx, models.User{
			Name:     "Pending",
			Email:    "pending@example.com",
			Username: "pending",
		}); err != nil {
			t.Errorf("expected retry to succeed, got %v", err)
		}
	})
}

func TestIntegrationAuthSignUp(t *testing.T) {
	st, _ := setupTestStore(t)
	ctx := context.Background()

	provider, err := auth.NewRebblit(st, func(ctx context.Context, email, otp string, purpose auth.OTPPurpose) error {
		return nil
	})
	if err != nil {
		t.Fatalf("NewRebblit failed: %v", err)
	}

	user, err := provider.SignUp(ctx, "Amira", "signup@example.com", "signup", "s3cret-pass")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	t.Run("credential account is linked", func(t *testing.T) {
		account, err := st.Accounts.ByProvider(ctx, "credential", user.ID)
		if err != nil {
			t.Fatalf("ByProvider failed: %v", err)
		}
		if account.Password == nil || *account.Password == "s3cret-pass" {
			t.Error("expected a hashed password on the account")
		}
	})

	t.Run("sign in round trip", func(t *testing.T) {
		session, err := provider.SignIn(ctx, "signup@example.com", "s3cret-pass", "", "")
		if err != nil {
			t.Fatalf("SignIn failed: %v", err)
		}
		if _, err := provider.SessionByToken(ctx, session.Token); err != nil {
			t.Errorf("SessionByToken failed: %v", err)
		}
		if _, err := provider.SignIn(ctx, "signup@example.com", "wrong-pass", "", ""); err == nil {
			t.Error("expected wrong password to be rejected")
		}
	})

	t.Run("duplicate sign-up reports the email conflict", func(t *testing.T) {
		_, err := provider.SignUp(ctx, "Amira", "signup@example.com", "signup2", "s3cret-pass")
		if !errors.Is(err, runtime.ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey, got %v", err)
		}
	})
}

func TestIntegrationSchemaReapply(t *testing.T) {
	st, pool := setupTestStore(t)
	ctx := context.Background()
	_ = st

	tables, err := models.Tables()
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	planner := migration.NewPlanner()
	upSQL, downSQL, err := planner.GenerateSchema(tables)
	if err != nil {
		t.Fatalf("GenerateSchema failed: %v", err)
	}

	// The schema is already in place from setup. Applying the same DDL under
	// a new version must succeed: tables and indexes via IF NOT EXISTS, enum
	// types via the duplicate_object guard.
	executor := migration.NewExecutor(pool)
	if err := executor.Apply(ctx, migration.Migration{
		Version: "00000000000002",
		Name:    "init_again",
		UpSQL:   upSQL,
		DownSQL: downSQL,
	}, false); err != nil {
		t.Fatalf("expected re-applied schema to succeed, got %v", err)
	}
}
