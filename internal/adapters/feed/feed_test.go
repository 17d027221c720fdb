package feed_test

import (
	"context"
	"testing"
	"time"

	feed "github.com/grantwise/matchd/internal/adapters/feed"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryFeed(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory change feed", t, func() {
		f := feed.NewInMemoryFeed()

		Convey("When publishing to a subscribed topic", func() {
			var got []feed.Change
			f.Subscribe("candidates", func(_ context.Context, ch feed.Change) {
				got = append(got, ch)
			})

			f.Publish(ctx, feed.Change{
				Topic:      "candidates",
				RecordID:   "c1",
				Kind:       "updated",
				OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			})

			Convey("Then the handler receives the change", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].RecordID, ShouldEqual, "c1")
				So(got[0].Kind, ShouldEqual, "updated")
			})
		})

		Convey("When several handlers subscribe to one topic", func() {
			first, second := 0, 0
			f.Subscribe("candidates", func(_ context.Context, _ feed.Change) { first++ })
			f.Subscribe("candidates", func(_ context.Context, _ feed.Change) { second++ })

			f.Publish(ctx, feed.Change{Topic: "candidates", RecordID: "c1"})

			Convey("Then every handler is invoked", func() {
				So(first, ShouldEqual, 1)
				So(second, ShouldEqual, 1)
			})
		})

		Convey("When publishing to a topic with no subscribers", func() {
			So(func() {
				f.Publish(ctx, feed.Change{Topic: "profiles", RecordID: "p1"})
			}, ShouldNotPanic)
		})

		Convey("When topics differ", func() {
			calls := 0
			f.Subscribe("candidates", func(_ context.Context, _ feed.Change) { calls++ })

			f.Publish(ctx, feed.Change{Topic: "profiles", RecordID: "p1"})

			Convey("Then unrelated topics never cross over", func() {
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When subscribing a nil handler", func() {
			f.Subscribe("candidates", nil)
			So(func() {
				f.Publish(ctx, feed.Change{Topic: "candidates"})
			}, ShouldNotPanic)
		})
	})
}
