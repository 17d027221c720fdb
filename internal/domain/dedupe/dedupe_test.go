package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/grantwise/matchd/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		ctx := context.Background()

		Convey("When created with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it starts empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording notification ids", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the id is new", func() {
				seen := d.SeenAndRecord(ctx, "n-1")

				Convey("Then it is recorded as unseen", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the id was already recorded", func() {
				d.SeenAndRecord(ctx, "n-1")
				seen := d.SeenAndRecord(ctx, "n-1")

				Convey("Then the resubmission is caught", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording an id", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "n-1")
			d.Unrecord(ctx, "n-1")

			Convey("Then the id can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "n-1"), ShouldBeFalse)
			})

			Convey("And unrecording an unknown id is a no-op", func() {
				d.SeenAndRecord(ctx, "n-2")
				d.Unrecord(ctx, "n-unknown")
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "n-2"), ShouldBeTrue)
			})
		})

		Convey("When the capacity bound is reached", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			d.SeenAndRecord(ctx, "n-1")
			d.SeenAndRecord(ctx, "n-2")
			d.SeenAndRecord(ctx, "n-3")
			d.SeenAndRecord(ctx, "n-4")

			Convey("Then the oldest id is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "n-1"), ShouldBeFalse) // evicted
			})

			Convey("And recent ids are still caught", func() {
				So(d.SeenAndRecord(ctx, "n-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "n-4"), ShouldBeTrue)
			})
		})

		Convey("When accessed concurrently", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(worker int) {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						d.SeenAndRecord(ctx, fmt.Sprintf("w%d-n%d", worker, j))
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every distinct id is tracked exactly once", func() {
				So(d.Size(), ShouldEqual, 1000)
			})
		})

		Convey("When the same id races from many goroutines", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			var firsts sync.Map
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(worker int) {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "shared") {
						firsts.Store(worker, true)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one submission wins", func() {
				count := 0
				firsts.Range(func(_, _ any) bool {
					count++
					return true
				})
				So(count, ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
