package fanout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	fanout "github.com/grantwise/matchd/internal/adapters/fanout"
	"github.com/grantwise/matchd/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWebhookChannel(t *testing.T) {
	ctx := context.Background()

	Convey("Given a webhook channel against a test endpoint", t, func() {
		var received model.Envelope
		var gotContentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := fanout.NewWebhookChannel(srv.URL)

		Convey("When sending an envelope", func() {
			err := c.Send(ctx, model.Envelope{
				Notification: model.Notification{ID: "n1", Title: "New match"},
				SessionID:    "s1",
			})

			Convey("Then the endpoint receives the JSON payload", func() {
				So(err, ShouldBeNil)
				So(gotContentType, ShouldEqual, "application/json")
				So(received.ID, ShouldEqual, "n1")
				So(received.SessionID, ShouldEqual, "s1")
			})
		})

		Convey("Then it identifies as a non-primary webhook channel", func() {
			So(c.Name(), ShouldEqual, "webhook")
			So(c.Primary(), ShouldBeFalse)
			So(c.Close(), ShouldBeNil)
		})
	})

	Convey("Given an endpoint that rejects deliveries", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := fanout.NewWebhookChannel(srv.URL)

		Convey("Then Send fails with ErrWebhookRejected", func() {
			err := c.Send(ctx, model.Envelope{})
			So(err, ShouldWrap, fanout.ErrWebhookRejected)
		})
	})

	Convey("Given an unreachable endpoint", t, func() {
		c := fanout.NewWebhookChannel("http://127.0.0.1:1/hook")

		Convey("Then Send fails with a transport error", func() {
			So(c.Send(ctx, model.Envelope{}), ShouldNotBeNil)
		})
	})
}
