package paths

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"My First Story", "my-first-story"},
		{"  spaced   out  ", "spaced-out"},
		{"Café Nights", "cafe-nights"},
		{"UPPER lower 42", "upper-lower-42"},
		{"---dashes---", "dashes"},
		{"!!!", "story"},
		{"", "story"},
		{"第一个故事", "story"},
		{"Story #3: The Return!", "story-3-the-return"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestStoryFolderName(t *testing.T) {
	got := StoryFolderName("My First Story", "0a1b2c3d-4e5f-6789-abcd-ef0123456789")
	want := "my-first-story-0a1b2c3d"
	if got != want {
		t.Errorf("StoryFolderName = %q, want %q", got, want)
	}

	// Short ids are used whole.
	if got := StoryFolderName("x", "abc"); got != "x-abc" {
		t.Errorf("StoryFolderName with short id = %q, want %q", got, "x-abc")
	}
}
