package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pageWithTags(slug string, tags ...string) *ContentPage {
	return &ContentPage{
		Slug:        slug,
		URL:         "/docs/" + slug,
		FrontMatter: FrontMatter{Tags: tags},
	}
}

func TestBuildTagIndex_DistinctTagsAndMembership(t *testing.T) {
	pages := []*ContentPage{
		pageWithTags("a", "Intro", "Setup"),
		pageWithTags("b", "Intro"),
		pageWithTags("c"),
	}

	ti := BuildTagIndex(pages, "/docs/tags")

	tags := ti.Tags()
	require.Len(t, tags, 2)
	// Sorted by encoded name.
	require.Equal(t, "intro", tags[0].Encoded)
	require.Equal(t, "setup", tags[1].Encoded)
	require.Equal(t, "Intro", tags[0].Name)
	require.Equal(t, "/docs/tags/intro", tags[0].URL)

	intro := ti.Pages("intro")
	require.Len(t, intro, 2)
	require.Equal(t, "a", intro[0].Slug)
	require.Equal(t, "b", intro[1].Slug)

	require.Len(t, ti.Pages("setup"), 1)
}

func TestBuildTagIndex_UnknownEncodedNameYieldsEmpty(t *testing.T) {
	ti := BuildTagIndex([]*ContentPage{pageWithTags("a", "Intro")}, "/tags")

	pages := ti.Pages("nope")
	require.NotNil(t, pages)
	require.Empty(t, pages)
}

func TestBuildTagIndex_CollisionFirstSeenWins(t *testing.T) {
	// "Web Dev" and "web-dev" encode to the same key. The display name from
	// the first page in slug order claims the key; the later page still joins
	// the membership set.
	pages := []*ContentPage{
		pageWithTags("a", "Web Dev"),
		pageWithTags("b", "web-dev"),
	}

	ti := BuildTagIndex(pages, "/tags")

	tags := ti.Tags()
	require.Len(t, tags, 1)
	require.Equal(t, "Web Dev", tags[0].Name)
	require.Equal(t, "web-dev", tags[0].Encoded)

	members := ti.Pages("web-dev")
	require.Len(t, members, 2)
}

func TestBuildTagIndex_DeterministicAcrossRuns(t *testing.T) {
	pages := []*ContentPage{
		pageWithTags("a", "Web Dev", "Intro"),
		pageWithTags("b", "web-dev"),
	}

	first := BuildTagIndex(pages, "/tags")
	for range 10 {
		again := BuildTagIndex(pages, "/tags")
		require.Equal(t, first.Tags(), again.Tags())
	}
}

func TestBuildTagIndex_DuplicateTagOnOnePageCountedOnce(t *testing.T) {
	ti := BuildTagIndex([]*ContentPage{pageWithTags("a", "Intro", "intro")}, "/tags")
	require.Len(t, ti.Pages("intro"), 1)
}

func TestEncodeTagName_Lowercases(t *testing.T) {
	require.Equal(t, "intro", EncodeTagName("Intro"))
	require.Equal(t, "web-dev", EncodeTagName("Web Dev"))
}

func TestFallbackEncode(t *testing.T) {
	require.Equal(t, "c", fallbackEncode("C#"))
	require.Equal(t, "", fallbackEncode("###"))
	require.Equal(t, "a-b", fallbackEncode("A  &  B"))
}
