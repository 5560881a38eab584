package telemetry_test

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fightworker/internal/telemetry"
)

const sampleDoc = `[
  {"_T":"LogMatchStart","_D":"2026-03-14T12:00:00.000Z"},
  {"_T":"LogPlayerTakeDamage","_D":"2026-03-14T12:01:00.000Z",
   "attacker":{"name":"Alpha","teamId":1,"accountId":"account.alpha","location":{"x":1000,"y":2000,"z":30}},
   "victim":{"name":"Bravo","teamId":2,"accountId":"account.bravo","location":{"x":1500,"y":2100,"z":30}},
   "damage":23.5},
  {"_T":"LogPlayerMakeGroggy","_D":"2026-03-14T12:01:05.000Z",
   "attacker":{"name":"Alpha","teamId":1,"accountId":"account.alpha"},
   "victim":{"name":"Bravo","teamId":2,"accountId":"account.bravo","location":null}},
  {"_T":"LogPlayerKillV2","_D":"2026-03-14T12:01:10.000Z",
   "finisher":{"name":"Alpha","teamId":1,"accountId":"account.alpha"},
   "victim":{"name":"Bravo","teamId":null,"accountId":"account.bravo"}}
]`

func TestDecode(t *testing.T) {
	Convey("Given a telemetry document", t, func() {
		events, err := telemetry.Decode(strings.NewReader(sampleDoc))
		So(err, ShouldBeNil)
		So(events, ShouldHaveLength, 4)

		Convey("Then combat fields decode with nullable pointers intact", func() {
			dmg := events[1]
			So(dmg.Type, ShouldEqual, telemetry.TypeTakeDamage)
			So(dmg.Attacker.Name, ShouldEqual, "Alpha")
			So(*dmg.Attacker.TeamID, ShouldEqual, 1)
			So(dmg.Attacker.Location.X, ShouldEqual, 1000)
			So(dmg.Damage, ShouldEqual, 23.5)

			groggy := events[2]
			So(groggy.Attacker.Location, ShouldBeNil)
			So(groggy.Victim.Location, ShouldBeNil)

			kill := events[3]
			So(kill.KillCredit(), ShouldNotBeNil)
			So(kill.KillCredit().Name, ShouldEqual, "Alpha")
			So(kill.Victim.TeamID, ShouldBeNil)
		})

		Convey("Then unknown event types decode without combat fields", func() {
			So(events[0].Attacker, ShouldBeNil)
			So(events[0].Victim, ShouldBeNil)
		})
	})

	Convey("Given a legacy kill event", t, func() {
		doc := `[{"_T":"LogPlayerKill","_D":"2026-03-14T12:01:10.000Z",
			"killer":{"name":"Alpha","teamId":1,"accountId":"account.alpha"},
			"victim":{"name":"Bravo","teamId":2,"accountId":"account.bravo"}}]`
		events, err := telemetry.Decode(strings.NewReader(doc))
		So(err, ShouldBeNil)

		Convey("Then the killer takes kill credit", func() {
			So(events[0].KillCredit().Name, ShouldEqual, "Alpha")
		})
	})

	Convey("Given a gzip'd document", t, func() {
		compressed, err := telemetry.Gzip([]byte(sampleDoc))
		So(err, ShouldBeNil)
		So(telemetry.IsGzip(compressed), ShouldBeTrue)

		Convey("Then DecodeRaw handles it transparently", func() {
			events, err := telemetry.DecodeRaw(compressed)
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 4)
		})

		Convey("Then Gunzip restores the original bytes", func() {
			raw, err := telemetry.Gunzip(compressed)
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, sampleDoc)
		})
	})

	Convey("Given a structurally broken document", t, func() {
		_, err := telemetry.Decode(strings.NewReader(`{"not":"an array"`))

		Convey("Then decoding fails fatally", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
