package mail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/okian/santa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type staticSource struct {
	tok *oauth2.Token
	err error
}

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, s.err }

func TestTokenCache(t *testing.T) {
	Convey("Given a token file path in a fresh directory", t, func() {
		path := filepath.Join(t.TempDir(), "auth", "token.json")

		Convey("When nothing was cached yet", func() {
			tok, err := loadToken(path)

			Convey("Then load should return no token and no error", func() {
				So(err, ShouldBeNil)
				So(tok, ShouldBeNil)
			})
		})

		Convey("When a token is saved", func() {
			want := &oauth2.Token{
				AccessToken:  "access",
				RefreshToken: "refresh",
				TokenType:    "Bearer",
				Expiry:       time.Date(2026, time.December, 24, 12, 0, 0, 0, time.UTC),
			}
			So(saveToken(path, want), ShouldBeNil)

			Convey("Then it should read back unchanged", func() {
				got, err := loadToken(path)
				So(err, ShouldBeNil)
				So(got.AccessToken, ShouldEqual, want.AccessToken)
				So(got.RefreshToken, ShouldEqual, want.RefreshToken)
				So(got.Expiry.Equal(want.Expiry), ShouldBeTrue)
			})

			Convey("Then the file should be private to the owner", func() {
				info, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
			})
		})

		Convey("When the cache holds garbage", func() {
			So(os.MkdirAll(filepath.Dir(path), 0o700), ShouldBeNil)
			So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)

			Convey("Then load should report a parse error", func() {
				_, err := loadToken(path)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestPersistingTokenSource(t *testing.T) {
	Convey("Given a persisting source seeded with the current token", t, func() {
		path := filepath.Join(t.TempDir(), "token.json")
		seed := &oauth2.Token{AccessToken: "old"}
		l := logger.Get()

		Convey("When the base returns the same token", func() {
			src := newPersistingTokenSource(staticSource{tok: seed}, path, seed, l)
			_, err := src.Token()
			So(err, ShouldBeNil)

			Convey("Then nothing should be written", func() {
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the base mints a new token", func() {
			src := newPersistingTokenSource(staticSource{tok: &oauth2.Token{AccessToken: "new"}}, path, seed, l)
			tok, err := src.Token()
			So(err, ShouldBeNil)
			So(tok.AccessToken, ShouldEqual, "new")

			Convey("Then the cache should hold it", func() {
				cached, err := loadToken(path)
				So(err, ShouldBeNil)
				So(cached.AccessToken, ShouldEqual, "new")
			})
		})

		Convey("When the base fails", func() {
			boom := errors.New("refresh revoked")
			src := newPersistingTokenSource(staticSource{err: boom}, path, seed, l)
			_, err := src.Token()

			Convey("Then the error should pass through", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})
	})
}
