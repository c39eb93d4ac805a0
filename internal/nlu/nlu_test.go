package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vox/internal/auth"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		input string
		want  Family
	}{
		{"search for weather in Boston", WebSearch},
		{"Look up the capital of France", WebSearch},
		{"google golang generics", WebSearch},
		{"open calculator", AppLaunch},
		{"Launch Firefox", AppLaunch},
		{"create file notes", FileCreate},
		{"please make a file called todo", FileCreate},
		{"rename notes.txt to todo.txt", FileCreate},
		{"volume up by 20 percent", SystemControl},
		{"turn the brightness down", SystemControl},
		{"shutdown now", SystemControl},
		{"please shut down the computer", SystemControl},
		{"restart the computer", SystemControl},
		{"unmute", SystemControl},
		{"Unmute the sound.", SystemControl},
		{"help", Help},
		{"goodbye", Exit},
		{"Quit.", Exit},
		{"what's the time", Unrecognized},
		{"", Unrecognized},
		{"   ", Unrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.input))
		})
	}
}

func families() []Family {
	out := make([]Family, len(precedence))
	for i, r := range precedence {
		out[i] = r.family
	}
	return out
}

func TestClassifier_ExitWinsOverEveryFamily(t *testing.T) {
	c := NewClassifier()

	for _, f := range families() {
		for _, kw := range f.Keywords() {
			for _, exit := range Exit.Keywords() {
				text := exit + ", " + kw + " something"
				assert.Equal(t, Exit, c.Classify(text), text)

				text = kw + " something then " + exit
				assert.Equal(t, Exit, c.Classify(text), text)
			}
		}
	}
}

func TestClassifier_GoodbyeSearchForCats(t *testing.T) {
	assert.Equal(t, Exit, NewClassifier().Classify("goodbye, search for cats"))
}

func TestClassifier_MatchesWholeWordsOnly(t *testing.T) {
	c := NewClassifier()

	// "start" inside "restart", "run" inside "brunch", "find" inside "findings"
	assert.Equal(t, SystemControl, c.Classify("restart"))
	assert.Equal(t, Unrecognized, c.Classify("brunch plans"))
	assert.Equal(t, Unrecognized, c.Classify("my findings"))
}

func TestClassifier_PrecedenceResolvesOverlap(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, WebSearch, c.Classify("open a search for volume knobs"))
	assert.Equal(t, AppLaunch, c.Classify("open the volume mixer"))
	assert.Equal(t, SystemControl, c.Classify("help with the volume"))
}

func TestClassifier_Mentions(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.Mentions("run shutdown", SystemControl))
	assert.True(t, c.Mentions("open the volume mixer", SystemControl))
	assert.False(t, c.Mentions("open calculator", SystemControl))
	assert.False(t, c.Mentions("restarting", SystemControl))
	assert.False(t, c.Mentions("", SystemControl))
}

func TestPrecedence_Order(t *testing.T) {
	assert.Equal(t,
		[]Family{Exit, WebSearch, AppLaunch, FileCreate, SystemControl, Help},
		families())
}

func TestFamily_Required(t *testing.T) {
	for _, f := range families() {
		want := auth.Basic
		if f == SystemControl {
			want = auth.Admin
		}
		assert.Equal(t, want, f.Required(), f.String())
	}
}

func TestNewCommand_Normalizes(t *testing.T) {
	cmd := NewCommand("  Search   for Weather\tin Boston ")
	assert.Equal(t, "search for weather in boston", cmd.Text)
	assert.Equal(t, "  Search   for Weather\tin Boston ", cmd.Raw)
}

func TestIsAffirmative(t *testing.T) {
	for _, s := range []string{"yes", "Yeah, do it", "yep", "sure thing", "okay", "OK", "I confirm"} {
		assert.True(t, IsAffirmative(s), s)
	}
	for _, s := range []string{"no", "", "nope", "yesterday", "cancel"} {
		assert.False(t, IsAffirmative(s), s)
	}

	// token containment, not sentiment
	assert.True(t, IsAffirmative("not sure"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("Hey Assistant, are you there?", "hey assistant"))
	assert.False(t, ContainsPhrase("hey assistants", "hey assistant"))
	assert.False(t, ContainsPhrase("anything", ""))
}
