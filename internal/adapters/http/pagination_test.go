package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/epiwatch/epiwatch/internal/adapters/http"
)

func linkHeaderFor(t *testing.T, p handler.Pagination) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/things", func(c *fiber.Ctx) error {
		handler.SetLinkHeaders(c, p)
		return c.SendStatus(200)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/things", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.Header.Get("Link")
}

func TestSetLinkHeaders_MiddleWindow(t *testing.T) {
	link := linkHeaderFor(t, handler.Pagination{Offset: 20, Limit: 10, Total: 45})

	for _, want := range []string{
		`</things?offset=0&limit=10>; rel="first"`,
		`</things?offset=10&limit=10>; rel="prev"`,
		`</things?offset=30&limit=10>; rel="next"`,
		`</things?offset=35&limit=10>; rel="last"`,
	} {
		if !strings.Contains(link, want) {
			t.Errorf("missing %s in %q", want, link)
		}
	}
}

func TestSetLinkHeaders_FirstPage(t *testing.T) {
	link := linkHeaderFor(t, handler.Pagination{Offset: 0, Limit: 10, Total: 5})

	if strings.Contains(link, `rel="prev"`) || strings.Contains(link, `rel="next"`) {
		t.Errorf("single-page result must not advertise prev/next, got %q", link)
	}
	if !strings.Contains(link, `</things?offset=0&limit=10>; rel="last"`) {
		t.Errorf("last offset must clamp to 0, got %q", link)
	}
}
