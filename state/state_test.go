package state

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hearthwood/annalist/save"
)

// ============================================================
// Registry Tests
// ============================================================

const testSave = `
meta_data={
	meta_date=1066.9.15
	meta_real_date=867.1.1
}
traits_lookup={ brave craven diligent }
landed_titles={
	landed_titles={
		100={
			key=c_derby
			name="Derby"
			de_jure_liege=101
			history={ 1000.1.1=1 1050.2.3={ type=conquest holder=2 } }
		}
		101={ key=d_mercia name="Mercia" vassals={ 100 } history={ 1040.1.1=1 } }
		102=none
	}
}
county_manager={
	counties={
		c_derby={ faith=300 culture=400 }
	}
}
dynasties={
	dynasty_house={
		200={
			name="Alfredings"
			prestige={ currency=50.5 accumulated=200.25 }
			historical={ 1 2 }
		}
	}
}
living={
	1={
		first_name="Aelfred"
		birth=1020.3.5
		skill={ 5 4 3 6 2 7 }
		traits={ 0 2 }
		dynasty_house=200
		faith=300
		culture=400
		family_data={ spouse=2 child={ 3 } }
		alive_data={
			piety={ accumulated=10.5 }
			prestige={ accumulated={ value=99 } }
			gold=150.75
			memories={ 500 }
			inventory={ artifacts={ 600 } }
		}
		landed_data={
			dread=12.5
			strength=1000.25
			domain={ 100 101 }
			vassal_contracts={ 700 }
		}
	}
	2={
		first_name="Emma"
		birth=1022.7.1
		female=yes
		dynasty_house=200
		family_data={ spouse=1 }
	}
}
dead_unprunable={
	3={
		first_name="Edward"
		birth=1045.1.1
		dead_data={ reason=death_peaceful date=1065.12.1 liege=1 }
	}
}
vassal_contracts={
	database={
		700={ vassal=3 }
	}
}
religion={
	faiths={
		300={
			name="Catholic"
			fervor=35.5
			doctrine={ doctrine_gender_male_dominated doctrine_monogamy tenet_communal_identity }
			religious_head=101
		}
	}
}
culture_manager={
	cultures={
		400={
			name="Anglo-Saxon"
			ethos=ethos_stoic
			heritage=heritage_west_germanic
			martial_custom=martial_custom_male_only
			language=language_anglic
			created=950.1.1
			traditions={ tradition_hard_working }
		}
	}
}
character_memory_manager={
	database={
		500={ type=first_love creation_date=1040.5.5 participants={ lover=2 } }
	}
}
played_character={
	name="Player One"
	player=7
	character=1
	legacy={
		{
			character=1
			date=1060.1.1
			score=100
			prestige=50
			piety=25
			dread=3.5
			lifestyle=lifestyle_diplomat
			perk={ diplomat_perk }
		}
	}
}
artifacts={
	artifacts={
		600={
			name="Sword"
			type=weapon
			rarity=famed
			quality=80
			wealth=40
			owner=1
			history={ entries={ { type=created date=1050.1.1 actor=1 } } }
		}
	}
}
`

func ingestAll(t *testing.T, doc string) *State {
	t.Helper()
	st := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := save.NewSectionReader([]byte(doc), save.EncodingText, nil)
	for {
		sec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return st
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if err := st.IngestSection(sec); err != nil {
			t.Fatalf("IngestSection %s failed: %v", sec.Name(), err)
		}
	}
}

func TestState_Meta(t *testing.T) {
	st := ingestAll(t, testSave)
	if got := st.CurrentDate(); got != (Date{Year: 1066, Month: 9, Day: 15}) {
		t.Errorf("current date: got %s", got)
	}
	if got := st.RealDate(); got != (Date{Year: 867, Month: 1, Day: 1}) {
		t.Errorf("real date: got %s", got)
	}
}

func TestState_Counts(t *testing.T) {
	st := ingestAll(t, testSave)
	counts := st.Counts()
	want := map[Kind]int{
		KindCharacter: 3,
		KindTitle:     2, // the none entry is not a title
		KindDynasty:   1,
		KindFaith:     1,
		KindCulture:   1,
		KindMemory:    1,
		KindArtifact:  1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("%s: expected %d, got %d", kind, n, counts[kind])
		}
	}
}

func TestState_SingleConstruction(t *testing.T) {
	st := ingestAll(t, testSave)
	first, err := st.Character(1)
	if err != nil {
		t.Fatalf("Character(1) failed: %v", err)
	}
	second, err := st.Character(1)
	if err != nil {
		t.Fatalf("Character(1) again failed: %v", err)
	}
	if first != second {
		t.Error("expected the same pointer on repeated access")
	}
}

// Mutual spouses must terminate and resolve to the registry's entities.
func TestState_CyclicReferences(t *testing.T) {
	st := ingestAll(t, testSave)

	aelfred, err := st.Character(1)
	if err != nil {
		t.Fatalf("Character(1) failed: %v", err)
	}
	if len(aelfred.Spouses) != 1 {
		t.Fatalf("expected 1 spouse, got %d", len(aelfred.Spouses))
	}
	emma, err := aelfred.Spouses[0].Get()
	if err != nil {
		t.Fatalf("spouse Get failed: %v", err)
	}
	if emma.FirstName != "Emma" {
		t.Errorf("spouse: expected Emma, got %s", emma.FirstName)
	}

	back, err := emma.Spouses[0].Get()
	if err != nil {
		t.Fatalf("back reference Get failed: %v", err)
	}
	if back != aelfred {
		t.Error("cycle did not resolve to the same entity")
	}
	if direct, _ := st.Character(2); direct != emma {
		t.Error("handle resolution bypassed the registry")
	}
}

// A populate failure sticks to its id: the second lookup must not hand
// out the half-populated entity with a nil error.
func TestState_PopulateErrorSticks(t *testing.T) {
	doc := `living={ 9={ birth=1000.1.1 } }` // no first_name
	st := ingestAll(t, doc)

	if _, err := st.Character(9); err == nil {
		t.Fatal("expected an error for the broken character")
	}
	c, err := st.Character(9)
	if err == nil {
		t.Fatalf("repeated access returned %+v with a nil error", c)
	}
	if c != nil {
		t.Error("a failed entity must not be handed out")
	}
}

// Gapped skill indexes appear in real saves; they fold into a dense
// sequence and must not break character construction.
func TestState_GappedSkillBlock(t *testing.T) {
	doc := `living={ 9={ first_name="Osred" birth=1000.1.1 skill={ 1 5=9 } } }`
	st := ingestAll(t, doc)
	c, err := st.Character(9)
	if err != nil {
		t.Fatalf("Character(9) failed: %v", err)
	}
	if len(c.Skills) != 2 || c.Skills[0] != 1 || c.Skills[1] != 9 {
		t.Errorf("skills: got %v", c.Skills)
	}
}

func TestState_UnknownID(t *testing.T) {
	st := ingestAll(t, testSave)
	if _, err := st.Character(999); !errors.Is(err, ErrUnknownID) {
		t.Errorf("expected ErrUnknownID, got %v", err)
	}
	if _, err := st.Title(999); !errors.Is(err, ErrUnknownID) {
		t.Errorf("expected ErrUnknownID, got %v", err)
	}
}

func TestState_CharacterFields(t *testing.T) {
	st := ingestAll(t, testSave)
	c, err := st.Character(1)
	if err != nil {
		t.Fatalf("Character(1) failed: %v", err)
	}

	if c.FirstName != "Aelfred" {
		t.Errorf("first name: got %s", c.FirstName)
	}
	if c.Birth != (Date{Year: 1020, Month: 3, Day: 5}) {
		t.Errorf("birth: got %s", c.Birth)
	}
	if len(c.Skills) != 6 || c.Skills[0] != 5 {
		t.Errorf("skills: got %v", c.Skills)
	}
	if len(c.Traits) != 2 || c.Traits[0] != "brave" || c.Traits[1] != "diligent" {
		t.Errorf("traits: got %v", c.Traits)
	}
	if c.Piety != 10.5 || c.Prestige != 99 || c.Gold != 150.75 {
		t.Errorf("currencies: piety=%v prestige=%v gold=%v", c.Piety, c.Prestige, c.Gold)
	}
	if c.Dread != 12.5 || c.Strength != 1000.25 {
		t.Errorf("landed: dread=%v strength=%v", c.Dread, c.Strength)
	}
	if len(c.Titles) != 2 || c.Titles[0].ID() != 100 {
		t.Errorf("titles: got %d handles", len(c.Titles))
	}
	if len(c.Vassals) != 1 || c.Vassals[0].ID() != 3 {
		t.Error("vassal contract did not map to its vassal")
	}
	if c.House.ID() != 200 || c.Faith.ID() != 300 || c.Culture.ID() != 400 {
		t.Error("house, faith or culture handle wrong")
	}
	if len(c.Children) != 1 || c.Children[0].ID() != 3 {
		t.Errorf("children: got %v", len(c.Children))
	}
	if len(c.Memories) != 1 || len(c.Artifacts) != 1 {
		t.Errorf("memories/artifacts: got %d/%d", len(c.Memories), len(c.Artifacts))
	}
}

// A character without a faith or culture of their own borrows them from
// the house's current leader.
func TestState_HouseLeaderFallback(t *testing.T) {
	st := ingestAll(t, testSave)
	emma, err := st.Character(2)
	if err != nil {
		t.Fatalf("Character(2) failed: %v", err)
	}
	if emma.Faith.Valid() {
		t.Fatal("fixture drift: Emma should carry no faith of her own")
	}
	if got := emma.EffectiveFaith(); !got.Valid() || got.ID() != 300 {
		t.Errorf("effective faith: got %d", got.ID())
	}
	if got := emma.EffectiveCulture(); !got.Valid() || got.ID() != 400 {
		t.Errorf("effective culture: got %d", got.ID())
	}

	aelfred, err := st.Character(1)
	if err != nil {
		t.Fatalf("Character(1) failed: %v", err)
	}
	if got := aelfred.EffectiveFaith(); got.ID() != 300 {
		t.Error("own faith should win over the fallback")
	}
}

func TestState_DeadCharacter(t *testing.T) {
	st := ingestAll(t, testSave)
	c, err := st.Character(3)
	if err != nil {
		t.Fatalf("Character(3) failed: %v", err)
	}
	if !c.Dead {
		t.Fatal("expected dead")
	}
	if c.DeathReason != "death_peaceful" {
		t.Errorf("reason: got %s", c.DeathReason)
	}
	if c.DeathDate != (Date{Year: 1065, Month: 12, Day: 1}) {
		t.Errorf("death date: got %s", c.DeathDate)
	}
	if c.Liege.ID() != 1 {
		t.Error("liege handle wrong")
	}
	if len(c.Parents) != 1 || c.Parents[0].ID() != 1 {
		t.Error("parent index did not reach the child")
	}
}

func TestState_TitleHistoryAndCounty(t *testing.T) {
	st := ingestAll(t, testSave)
	title, err := st.Title(100)
	if err != nil {
		t.Fatalf("Title(100) failed: %v", err)
	}

	if title.Name != "Derby" || title.Key != "c_derby" {
		t.Errorf("identity: %s/%s", title.Name, title.Key)
	}
	if title.DeJureLiege.ID() != 101 {
		t.Error("de jure liege wrong")
	}
	if title.Faith.ID() != 300 || title.Culture.ID() != 400 {
		t.Error("county faith/culture association missing")
	}

	if len(title.History) != 2 {
		t.Fatalf("history: expected 2 entries, got %d", len(title.History))
	}
	if !title.History[0].Date.Before(title.History[1].Date) {
		t.Error("history not in chronological order")
	}
	if title.History[0].Action != "inherited" || title.History[0].Holder.ID() != 1 {
		t.Errorf("first entry: %+v", title.History[0])
	}
	if title.History[1].Action != "conquest" || title.History[1].Holder.ID() != 2 {
		t.Errorf("second entry: %+v", title.History[1])
	}
	if title.Holder().ID() != 2 {
		t.Error("current holder wrong")
	}

	liege, err := st.Title(101)
	if err != nil {
		t.Fatalf("Title(101) failed: %v", err)
	}
	if len(liege.Vassals) != 1 || liege.Vassals[0].ID() != 100 {
		t.Error("vassal titles wrong")
	}
}

func TestState_Dynasty(t *testing.T) {
	st := ingestAll(t, testSave)
	d, err := st.Dynasty(200)
	if err != nil {
		t.Fatalf("Dynasty(200) failed: %v", err)
	}
	if d.Name != "Alfredings" {
		t.Errorf("name: got %s", d.Name)
	}
	if d.Prestige != 50.5 || d.PrestigeTotal != 200.25 {
		t.Errorf("prestige: %v/%v", d.Prestige, d.PrestigeTotal)
	}
	if len(d.Leaders) != 2 {
		t.Errorf("leaders: got %d", len(d.Leaders))
	}
	if d.Members != 2 {
		t.Errorf("members: expected 2, got %d", d.Members)
	}
}

func TestState_FaithAndCulture(t *testing.T) {
	st := ingestAll(t, testSave)

	f, err := st.Faith(300)
	if err != nil {
		t.Fatalf("Faith(300) failed: %v", err)
	}
	if f.Name != "Catholic" || f.Fervor != 35.5 {
		t.Errorf("faith: %s/%v", f.Name, f.Fervor)
	}
	if len(f.Doctrines) != 2 {
		t.Errorf("doctrines: got %d", len(f.Doctrines))
	}
	if len(f.Tenets) != 1 || f.Tenets[0] != "tenet_communal_identity" {
		t.Errorf("tenets: got %v", f.Tenets)
	}
	if f.Head.ID() != 101 {
		t.Error("religious head wrong")
	}
	if got := f.HeadCharacter(); !got.Valid() || got.ID() != 1 {
		t.Errorf("head character: got %d", got.ID())
	}

	c, err := st.Culture(400)
	if err != nil {
		t.Fatalf("Culture(400) failed: %v", err)
	}
	if c.Name != "Anglo-Saxon" || c.Heritage != "heritage_west_germanic" {
		t.Errorf("culture: %s/%s", c.Name, c.Heritage)
	}
	if c.Language != "language_anglic" || c.Ethos != "ethos_stoic" {
		t.Errorf("culture: %s/%s", c.Language, c.Ethos)
	}
	if len(c.Traditions) != 1 {
		t.Errorf("traditions: got %d", len(c.Traditions))
	}
	if c.Created != (Date{Year: 950, Month: 1, Day: 1}) {
		t.Errorf("created: got %s", c.Created)
	}
}

func TestState_MemoryAndArtifact(t *testing.T) {
	st := ingestAll(t, testSave)

	m, err := st.Memory(500)
	if err != nil {
		t.Fatalf("Memory(500) failed: %v", err)
	}
	if m.Type != "first_love" {
		t.Errorf("type: got %s", m.Type)
	}
	lover, ok := m.Participants["lover"]
	if !ok || lover.ID() != 2 {
		t.Error("participant lover wrong")
	}

	a, err := st.Artifact(600)
	if err != nil {
		t.Fatalf("Artifact(600) failed: %v", err)
	}
	if a.Name != "Sword" || a.Type != "weapon" || a.Rarity != "famed" {
		t.Errorf("artifact identity: %s/%s/%s", a.Name, a.Type, a.Rarity)
	}
	if a.Quality != 80 || a.Wealth != 40 {
		t.Errorf("artifact worth: %d/%d", a.Quality, a.Wealth)
	}
	if a.Owner.ID() != 1 {
		t.Error("owner wrong")
	}
	if len(a.History) != 1 || a.History[0].Type != "created" || a.History[0].Actor.ID() != 1 {
		t.Errorf("history: %+v", a.History)
	}
	if a.History[0].Recipient.Valid() {
		t.Error("recipient should be absent")
	}
}

func TestState_Player(t *testing.T) {
	st := ingestAll(t, testSave)
	players := st.Players()
	if len(players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(players))
	}
	p := players[0]
	if p.Name != "Player One" || p.PlayerID != 7 {
		t.Errorf("player: %s/%d", p.Name, p.PlayerID)
	}
	ch, err := p.Character.Get()
	if err != nil || ch.FirstName != "Aelfred" {
		t.Errorf("player character: %v (%v)", ch, err)
	}
	if len(p.Lineage) != 1 {
		t.Fatalf("lineage: got %d", len(p.Lineage))
	}
	node := p.Lineage[0]
	if node.Score != 100 || node.Dread != 3.5 || node.Lifestyle != "lifestyle_diplomat" {
		t.Errorf("lineage node: %+v", node)
	}
	if len(node.Perks) != 1 || node.Perks[0] != "diplomat_perk" {
		t.Errorf("perks: %v", node.Perks)
	}
}

func TestState_UnknownSectionSkipped(t *testing.T) {
	doc := "wars={ huge={ pile=1 } }\n" + testSave
	st := ingestAll(t, doc)
	if st.Counts()[KindCharacter] != 3 {
		t.Error("sections after a skipped one were lost")
	}
}

func TestRef_MarshalJSON(t *testing.T) {
	st := ingestAll(t, testSave)
	c, err := st.Character(3)
	if err != nil {
		t.Fatalf("Character(3) failed: %v", err)
	}

	out, err := json.Marshal(c.Liege)
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	for _, want := range []string{`"id":1`, `"name":"Aelfred"`, `"subdir":"characters"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("descriptor %s missing %s", out, want)
		}
	}

	SetRefEncoding(RefPlainID)
	defer SetRefEncoding(RefDescriptor)
	out, err = json.Marshal(c.Liege)
	if err != nil {
		t.Fatalf("marshal plain: %v", err)
	}
	if string(out) != "1" {
		t.Errorf("plain id: got %s", out)
	}

	var absent Ref[Character]
	out, _ = json.Marshal(absent)
	if string(out) != "null" {
		t.Errorf("absent handle: got %s", out)
	}
}

func TestDate_ParseAndCompare(t *testing.T) {
	tests := []struct {
		input string
		want  Date
	}{
		{"1066.9.15", Date{1066, 9, 15}},
		{"750.1.1", Date{750, 1, 1}},
		{"867", Date{867, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v", got)
			}
		})
	}

	if _, err := ParseDate("not.a.date"); err == nil {
		t.Error("expected an error")
	}
	a, _ := ParseDate("1066.9.15")
	b, _ := ParseDate("1066.10.1")
	if !a.Before(b) || b.Before(a) {
		t.Error("ordering wrong")
	}
}
