package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/queue"
	"github.com/iliyamo/book-lending/internal/repository"
	"github.com/iliyamo/book-lending/internal/storage"
	"github.com/iliyamo/book-lending/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookReservedEvent
}

func (p *recordingPublisher) PublishBookReserved(_ context.Context, ev queue.BookReservedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type env struct {
	auth     *AuthService
	catalog  *CatalogService
	bookings *ReservationService
	admin    *AdminService
	books    *repository.BookRepo
	photos   *storage.DiskStore
	events   *recordingPublisher
}

func newEnv(t *testing.T) *env {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	books := repository.NewBookRepo(db)
	res := repository.NewReservationRepo(db)
	photos := storage.NewDiskStore(t.TempDir(), "http://localhost:8000")
	events := &recordingPublisher{}

	catalog := NewCatalogService(books, res, photos)
	bookings := NewReservationService(res, books, photos, events)
	return &env{
		auth:     NewAuthService(users, repository.NewTokenRepo(db), "test-secret", time.Hour, bcrypt.MinCost),
		catalog:  catalog,
		bookings: bookings,
		admin:    NewAdminService(users, res, catalog, bookings),
		books:    books,
		photos:   photos,
		events:   events,
	}
}

func (e *env) register(t *testing.T, name string) model.Identity {
	t.Helper()
	s, err := e.auth.Register(context.Background(), name, name+"@example.com", "pw-"+name)
	require.NoError(t, err)
	return model.Identity{UserID: s.User.ID, Role: s.User.Role}
}

func (e *env) promote(t *testing.T, name string) model.Identity {
	t.Helper()
	id := e.register(t, name)
	_, err := e.auth.UpdateUser(context.Background(), model.Identity{Role: model.RoleAdmin}, id.UserID, UserUpdate{Role: model.RoleAdmin})
	require.NoError(t, err)
	id.Role = model.RoleAdmin
	return id
}

// photo writes a fake stored asset and returns its reference.
func (e *env) photo(t *testing.T, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.photos.Dir, name), []byte("img"), 0o644))
	return storage.RefPrefix + "/" + name
}

func (e *env) photoExists(name string) bool {
	_, err := os.Stat(filepath.Join(e.photos.Dir, name))
	return err == nil
}

func (e *env) book(t *testing.T, owner model.Identity, name string) model.Book {
	t.Helper()
	b, err := e.catalog.CreateBook(context.Background(), model.BookInput{
		Name: name, Author: "Author " + name, Location: "Berlin", ContactPhone: "555", Photo: e.photo(t, name+".jpg"),
	}, owner)
	require.NoError(t, err)
	return b
}

var contact = model.RequesterInfo{FirstName: "John", LastName: "Doe", Address: "123 Main St", PhoneNumber: "1234567890"}

func assertKind(t *testing.T, err error, want Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, want, kind)
	if msg != "" {
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, msg, e.Message)
	}
}

func TestAuth_RegisterLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	s, err := e.auth.Register(ctx, "alice", " Alice@Example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", s.User.Email)
	assert.Equal(t, model.RoleUser, s.User.Role)
	assert.NotEmpty(t, s.Token)

	_, err = e.auth.Register(ctx, "alice", "other@example.com", "x")
	assertKind(t, err, KindConflict, MsgCredentialsTaken)
	_, err = e.auth.Register(ctx, "other", "alice@example.com", "x")
	assertKind(t, err, KindConflict, MsgCredentialsTaken)
	_, err = e.auth.Register(ctx, "", "x@example.com", "x")
	assertKind(t, err, KindValidation, "")

	login, err := e.auth.Login(ctx, "ALICE@example.com", "secret")
	require.NoError(t, err)
	id, err := e.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, id.UserID)

	_, err = e.auth.Login(ctx, "nobody@example.com", "secret")
	assertKind(t, err, KindNotFound, MsgUserNotFound)
	_, err = e.auth.Login(ctx, "alice@example.com", "wrong")
	assertKind(t, err, KindUnauthorized, MsgInvalidCredentials)
	_, err = e.auth.Login(ctx, " ", "secret")
	assertKind(t, err, KindValidation, MsgLoginFields)
	_, err = e.auth.Login(ctx, "alice@example.com", "")
	assertKind(t, err, KindValidation, MsgLoginFields)
}

func TestAuth_PasswordLengthLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	long := strings.Repeat("p", 80)

	_, err := e.auth.Register(ctx, "alice", "alice@example.com", long)
	assertKind(t, err, KindValidation, MsgPasswordTooLong)
	ok, err := e.auth.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.auth.Register(ctx, "alice", "alice@example.com", strings.Repeat("p", 72))
	require.NoError(t, err)

	bob := e.register(t, "bob")
	_, err = e.auth.UpdateProfile(ctx, bob.UserID, ProfileUpdate{Username: "bobby", Password: long})
	assertKind(t, err, KindValidation, MsgPasswordTooLong)
	p, err := e.auth.GetProfile(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Username, "rejected update changes nothing")
	_, err = e.auth.Login(ctx, "bob@example.com", "pw-bob")
	assert.NoError(t, err)
}

func TestAuth_Logout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.auth.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	assertKind(t, e.auth.Logout(ctx, ""), KindValidation, MsgTokenRequired)
	assertKind(t, e.auth.Logout(ctx, "garbage"), KindInvalidToken, MsgInvalidToken)

	require.NoError(t, e.auth.Logout(ctx, s.Token))
	require.NoError(t, e.auth.Logout(ctx, s.Token), "repeat logout succeeds")

	_, err = e.auth.Authenticate(ctx, s.Token)
	assertKind(t, err, KindInvalidToken, MsgInvalidToken)

	// other sessions of the same user stay valid
	again, err := e.auth.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, again.Token)
	assert.NoError(t, err)

	n, err := e.auth.PruneRevocations(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "revoked token has not expired yet")
}

func TestAuth_ProfileUpdates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	e.register(t, "bob")

	p, err := e.auth.GetProfile(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.Profile{Username: "alice", Email: "alice@example.com"}, p)

	_, err = e.auth.UpdateProfile(ctx, alice.UserID, ProfileUpdate{Username: "bob"})
	assertKind(t, err, KindConflict, MsgUsernameTaken)
	_, err = e.auth.UpdateProfile(ctx, alice.UserID, ProfileUpdate{Email: "BOB@example.com"})
	assertKind(t, err, KindConflict, MsgEmailTaken)

	u, err := e.auth.UpdateProfile(ctx, alice.UserID, ProfileUpdate{Username: "alicia", Password: "new-pw"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)
	assert.Equal(t, "alice@example.com", u.Email, "unspecified fields unchanged")

	_, err = e.auth.Login(ctx, "alice@example.com", "new-pw")
	assert.NoError(t, err)
	_, err = e.auth.Login(ctx, "alice@example.com", "pw-alice")
	assertKind(t, err, KindUnauthorized, "")

	_, err = e.auth.GetProfile(ctx, 999)
	assertKind(t, err, KindNotFound, MsgUserNotFound)

	ok, err := e.auth.UsernameExists(ctx, "alicia")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = e.auth.EmailExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuth_UpdateUserRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	_, err := e.auth.UpdateUser(ctx, alice, bob.UserID, UserUpdate{Role: model.RoleAdmin})
	assertKind(t, err, KindForbidden, MsgAdminRequired)

	root := e.promote(t, "root")
	_, err = e.auth.UpdateUser(ctx, root, bob.UserID, UserUpdate{Role: "superuser"})
	assertKind(t, err, KindValidation, MsgInvalidRole)

	u, err := e.auth.UpdateUser(ctx, root, bob.UserID, UserUpdate{Role: model.RoleAdmin, Email: "Robert@example.com"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "robert@example.com", u.Email)

	_, err = e.auth.UpdateUser(ctx, root, 999, UserUpdate{Role: model.RoleUser})
	assertKind(t, err, KindNotFound, MsgUserNotFound)
}

func TestAuth_AuthenticateUsesCurrentRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.auth.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	root := e.promote(t, "root")

	_, err = e.auth.UpdateUser(ctx, root, s.User.ID, UserUpdate{Role: model.RoleAdmin})
	require.NoError(t, err)
	id, err := e.auth.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())

	require.NoError(t, e.admin.DeleteUser(ctx, root, s.User.ID))
	_, err = e.auth.Authenticate(ctx, s.Token)
	assertKind(t, err, KindInvalidToken, "")
}

func TestCatalog_CreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	_, err := e.catalog.CreateBook(ctx, model.BookInput{Name: "Dune", Author: "Herbert", Location: "B", ContactPhone: "1"}, alice)
	assertKind(t, err, KindValidation, MsgPhotoRequired)

	ref := e.photo(t, "orphan.jpg")
	_, err = e.catalog.CreateBook(ctx, model.BookInput{Name: "Dune", Photo: ref}, alice)
	assertKind(t, err, KindValidation, MsgBookFields)
	assert.False(t, e.photoExists("orphan.jpg"), "unused upload is removed")

	b := e.book(t, alice, "dune")
	assert.Equal(t, model.BookAvailable, b.Status)
	assert.Equal(t, alice.UserID, b.OwnerID)
	assert.Equal(t, "http://localhost:8000/uploads/dune.jpg", b.Photo)
}

func TestCatalog_ListAndDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	dune := e.book(t, alice, "Dune")
	e.book(t, alice, "Emma")

	list, err := e.catalog.ListBooks(ctx, model.BookFilter{Name: "dun"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].Owner.Username)
	assert.Empty(t, list[0].Owner.Email)
	assert.Equal(t, "http://localhost:8000/uploads/Dune.jpg", list[0].Photo)

	mine, err := e.catalog.ListByOwner(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "alice@example.com", mine[0].Owner.Email)

	d, err := e.catalog.GetBookDetails(ctx, dune.ID)
	require.NoError(t, err)
	assert.Nil(t, d.Reservation)
	assert.Equal(t, model.OwnerRef{ID: alice.UserID, Username: "alice", ContactPhone: "555"}, d.Owner)

	_, err = e.bookings.ReserveBook(ctx, dune.ID, contact, carol)
	require.NoError(t, err)
	d, err = e.catalog.GetBookDetails(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookReserved, d.Status)
	require.NotNil(t, d.Reservation)
	assert.Equal(t, contact, *d.Reservation)

	_, err = e.catalog.GetBookDetails(ctx, 999)
	assertKind(t, err, KindNotFound, MsgBookNotFound)

	res, err := e.catalog.ListReservationsForUser(ctx, carol.UserID)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Dune", res[0].Book.Name)
	assert.Equal(t, "http://localhost:8000/uploads/Dune.jpg", res[0].Book.Photo)
}

func TestCatalog_UpdateAuthorization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	mallory := e.register(t, "mallory")
	root := e.promote(t, "root")
	b := e.book(t, alice, "dune")

	loc := "Paris"
	_, err := e.catalog.UpdateBook(ctx, b.ID, model.BookPatch{Location: &loc}, mallory)
	assertKind(t, err, KindForbidden, MsgBookForbidden)

	newRef := e.photo(t, "new.jpg")
	_, err = e.catalog.UpdateBook(ctx, b.ID, model.BookPatch{Photo: &newRef}, mallory)
	assertKind(t, err, KindForbidden, "")
	assert.False(t, e.photoExists("new.jpg"), "rejected upload is removed")
	assert.True(t, e.photoExists("dune.jpg"))

	got, err := e.catalog.UpdateBook(ctx, b.ID, model.BookPatch{Location: &loc}, alice)
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Location)
	assert.Equal(t, "Author dune", got.Author)

	newRef = e.photo(t, "new.jpg")
	got, err = e.catalog.UpdateBook(ctx, b.ID, model.BookPatch{Photo: &newRef}, root)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/new.jpg", got.Photo)
	assert.False(t, e.photoExists("dune.jpg"), "previous photo removed")
	assert.True(t, e.photoExists("new.jpg"))

	empty := " "
	_, err = e.catalog.UpdateBook(ctx, b.ID, model.BookPatch{Name: &empty}, alice)
	assertKind(t, err, KindValidation, MsgBookFields)

	_, err = e.catalog.UpdateBook(ctx, 999, model.BookPatch{Name: &loc}, alice)
	assertKind(t, err, KindNotFound, MsgBookNotFound)
}

func TestCatalog_DeleteCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	b := e.book(t, alice, "dune")
	_, err := e.bookings.ReserveBook(ctx, b.ID, contact, carol)
	require.NoError(t, err)

	assertKind(t, e.catalog.DeleteBook(ctx, b.ID, carol), KindForbidden, "")

	require.NoError(t, e.catalog.DeleteBook(ctx, b.ID, alice))
	assert.False(t, e.photoExists("dune.jpg"))
	_, err = e.catalog.GetBookDetails(ctx, b.ID)
	assertKind(t, err, KindNotFound, "")
	_, err = e.bookings.GetReservationByBookID(ctx, b.ID)
	assertKind(t, err, KindNotFound, MsgNoReservationForBook)

	assertKind(t, e.catalog.DeleteBook(ctx, b.ID, alice), KindNotFound, MsgBookNotFound)
}

func TestCatalog_AdminDeletesAnyBook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	root := e.promote(t, "root")
	b := e.book(t, alice, "dune")
	_, err := e.bookings.ReserveBook(ctx, b.ID, contact, carol)
	require.NoError(t, err)

	require.NoError(t, e.catalog.DeleteBook(ctx, b.ID, root))
	assert.False(t, e.photoExists("dune.jpg"))
	_, err = e.catalog.GetBookDetails(ctx, b.ID)
	assertKind(t, err, KindNotFound, MsgBookNotFound)
	_, err = e.bookings.GetReservationByBookID(ctx, b.ID)
	assertKind(t, err, KindNotFound, MsgNoReservationForBook)
	mine, err := e.catalog.ListReservationsForUser(ctx, carol.UserID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCatalog_DeleteToleratesMissingPhoto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	b := e.book(t, alice, "dune")
	require.NoError(t, os.Remove(filepath.Join(e.photos.Dir, "dune.jpg")))
	assert.NoError(t, e.catalog.DeleteBook(ctx, b.ID, alice))
}

func TestReservation_ReserveOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	dave := e.register(t, "dave")
	b := e.book(t, alice, "dune")

	_, err := e.bookings.ReserveBook(ctx, b.ID, model.RequesterInfo{FirstName: "John"}, carol)
	assertKind(t, err, KindValidation, MsgAllFieldsRequired)
	got, err := e.books.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookAvailable, got.Status, "validation failure changes nothing")

	res, err := e.bookings.ReserveBook(ctx, b.ID, contact, carol)
	require.NoError(t, err)
	assert.Equal(t, carol.UserID, res.ReservedBy)

	_, err = e.bookings.ReserveBook(ctx, b.ID, contact, dave)
	assertKind(t, err, KindUnavailable, MsgBookUnavailable)
	_, err = e.bookings.ReserveBook(ctx, 999, contact, dave)
	assertKind(t, err, KindUnavailable, MsgBookUnavailable)

	d, err := e.bookings.GetReservationByBookID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", d.ReservedBy.Username)
	assert.Equal(t, "alice", d.Book.Owner.Username)
	assert.Equal(t, "555", d.Book.Owner.ContactPhone)
	assert.Equal(t, contact, d.RequesterInfo)

	e.bookings.Wait()
	e.events.mu.Lock()
	defer e.events.mu.Unlock()
	require.Len(t, e.events.events, 1)
	assert.Equal(t, res.ID, e.events.events[0].ReservationID)
	assert.Equal(t, "dune", e.events.events[0].BookName)
	assert.Equal(t, alice.UserID, e.events.events[0].OwnerID)
}

func TestReservation_ConcurrentAttempts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	b := e.book(t, alice, "dune")

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		ok, refused int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			_, err := e.bookings.ReserveBook(ctx, b.ID, contact, model.Identity{UserID: uid})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if k, _ := KindOf(err); k == KindUnavailable {
				refused++
			}
		}(alice.UserID)
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, refused)

	all, err := e.bookings.GetAllReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReservation_GetAllEmpty(t *testing.T) {
	e := newEnv(t)
	_, err := e.bookings.GetAllReservations(context.Background())
	assertKind(t, err, KindNotFound, MsgNoReservations)
}

func TestAdmin_RequiresRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	_, err := e.admin.ListUsers(ctx, alice, model.UserFilter{})
	assertKind(t, err, KindForbidden, MsgAdminRequired)
	_, err = e.admin.GetUserByID(ctx, alice, alice.UserID)
	assertKind(t, err, KindForbidden, "")
	assertKind(t, e.admin.DeleteUser(ctx, alice, alice.UserID), KindForbidden, "")
	_, err = e.admin.ListAllReservations(ctx, alice)
	assertKind(t, err, KindForbidden, "")
	assertKind(t, e.admin.ExportReservations(ctx, alice, &bytes.Buffer{}), KindForbidden, "")
}

func TestAdmin_Users(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := e.promote(t, "root")
	e.register(t, "alice")

	users, err := e.admin.ListUsers(ctx, root, model.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = e.admin.ListUsers(ctx, root, model.UserFilter{Username: "ALI"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	_, err = e.admin.GetUserByID(ctx, root, 999)
	assertKind(t, err, KindNotFound, MsgUserNotFound)
	assertKind(t, e.admin.DeleteUser(ctx, root, 999), KindNotFound, MsgUserNotFound)
	assertKind(t, e.admin.DeleteUser(ctx, root, root.UserID), KindValidation, MsgSelfDelete)
}

func TestAdmin_DeleteUserCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := e.promote(t, "root")
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")

	alicesBook := e.book(t, alice, "dune")
	carolsBook := e.book(t, carol, "emma")
	// carol reserved alice's book, alice reserved carol's book
	_, err := e.bookings.ReserveBook(ctx, alicesBook.ID, contact, carol)
	require.NoError(t, err)
	_, err = e.bookings.ReserveBook(ctx, carolsBook.ID, contact, alice)
	require.NoError(t, err)

	require.NoError(t, e.admin.DeleteUser(ctx, root, alice.UserID))

	_, err = e.admin.GetUserByID(ctx, root, alice.UserID)
	assertKind(t, err, KindNotFound, "")
	_, err = e.catalog.GetBookDetails(ctx, alicesBook.ID)
	assertKind(t, err, KindNotFound, "")
	assert.False(t, e.photoExists("dune.jpg"))

	d, err := e.catalog.GetBookDetails(ctx, carolsBook.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookAvailable, d.Status, "book reserved by the deleted user is freed")
	assert.Nil(t, d.Reservation)

	_, err = e.admin.ListAllReservations(ctx, root)
	assertKind(t, err, KindNotFound, MsgNoReservations)
	mine, err := e.catalog.ListReservationsForUser(ctx, carol.UserID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestAdmin_ExportReservations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := e.promote(t, "root")
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	b := e.book(t, alice, "dune")
	_, err := e.bookings.ReserveBook(ctx, b.ID, contact, carol)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.admin.ExportReservations(ctx, root, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Reservation ID", rows[0][0])
	assert.Equal(t, "dune", rows[1][2])
	assert.Equal(t, "alice", rows[1][5])
	assert.Equal(t, "carol", rows[1][6])
	assert.Equal(t, "1234567890", rows[1][10])
}

func TestErrorKinds(t *testing.T) {
	err := wrapError(KindInvalidToken, MsgInvalidToken, assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "invalid_token", KindInvalidToken.String())
	_, ok := KindOf(assert.AnError)
	assert.False(t, ok)
}
