package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_QuitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Quit.Keys()
	assert.Contains(t, keys, "q")
	assert.Contains(t, keys, "ctrl+c")
}

func TestDefaultKeyMap_HelpBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Help.Keys()
	assert.Contains(t, keys, "?")
}

func TestDefaultKeyMap_BackBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Back.Keys()
	assert.Contains(t, keys, "esc")
}

func TestDefaultKeyMap_SubmitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Submit.Keys()
	assert.Contains(t, keys, "enter")
}

func TestDefaultKeyMap_StudyBindings(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.Toggle.Keys(), " ")
	assert.Contains(t, km.Flip.Keys(), " ")
	assert.Contains(t, km.Next.Keys(), "right")
	assert.Contains(t, km.Prev.Keys(), "left")
	assert.Contains(t, km.Generate.Keys(), "g")
	assert.Contains(t, km.Export.Keys(), "e")
	assert.Contains(t, km.Cite.Keys(), "c")
}

func TestDefaultKeyMap_ZoomBindings(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("+", km.ZoomIn))
	assert.True(t, Matches("=", km.ZoomIn))
	assert.True(t, Matches("-", km.ZoomOut))
	assert.False(t, Matches("+", km.ZoomOut))
}

func TestDefaultKeyMap_UpBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Up.Keys()
	assert.Contains(t, keys, "up")
	assert.Contains(t, keys, "k")
}

func TestDefaultKeyMap_DownBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Down.Keys()
	assert.Contains(t, keys, "down")
	assert.Contains(t, keys, "j")
}

func TestDefaultKeyMap_SelectBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Select.Keys()
	assert.Contains(t, keys, "enter")
}

func TestDefaultKeyMap_CancelBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Cancel.Keys()
	assert.Contains(t, keys, "esc")
}

func TestChatHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ChatHelp()

	assert.Len(t, bindings, 3)
	assert.Equal(t, km.Submit, bindings[0])
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	assert.Len(t, bindings, 2)
	assert.Equal(t, km.Quit, bindings[0])
	assert.Equal(t, km.Help, bindings[1])
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.FullHelp()

	assert.Len(t, bindings, 5)
	assert.Len(t, bindings[0], 3) // Up, Down, Select
	assert.Len(t, bindings[1], 3) // Toggle, Generate, Export
	assert.Len(t, bindings[2], 4) // Flip, Next, Prev, Cite
	assert.Len(t, bindings[3], 2) // ZoomIn, ZoomOut
	assert.Len(t, bindings[4], 3) // Back, Help, Quit
}

func TestMatches_True(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("?", km.Help))
	assert.True(t, Matches("up", km.Up))
	assert.True(t, Matches("k", km.Up))
}

func TestMatches_False(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("a", km.Help))
	assert.False(t, Matches("down", km.Up))
}

func TestBindings_HaveHelp(t *testing.T) {
	km := DefaultKeyMap()

	testCases := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Help", km.Help},
		{"Back", km.Back},
		{"Submit", km.Submit},
		{"Up", km.Up},
		{"Down", km.Down},
		{"Select", km.Select},
		{"Cancel", km.Cancel},
		{"Toggle", km.Toggle},
		{"Generate", km.Generate},
		{"Flip", km.Flip},
		{"Next", km.Next},
		{"Prev", km.Prev},
		{"Cite", km.Cite},
		{"Export", km.Export},
		{"ZoomIn", km.ZoomIn},
		{"ZoomOut", km.ZoomOut},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			help := tc.binding.Help()
			assert.NotEmpty(t, help.Key, "binding should have help key")
		})
	}
}
