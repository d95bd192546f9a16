package aifftext

import "testing"

func TestCommentRoundTrip(t *testing.T) {
	tag := &Tag{}
	tag.Apply(ChunkComment, encodeComments([]Comment{
		{Timestamp: 2870249472, MarkerID: 3, Text: "mixed down here"},
		{Timestamp: 2870249500, MarkerID: 0, Text: "odd"},
	}))

	if len(tag.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d: %#v", len(tag.Comments), tag.Comments)
	}
	if tag.Comments[0].Timestamp != 2870249472 || tag.Comments[0].MarkerID != 3 || tag.Comments[0].Text != "mixed down here" {
		t.Fatalf("unexpected first comment: %#v", tag.Comments[0])
	}
	if tag.Comments[1].Text != "odd" {
		t.Fatalf("unexpected second comment: %#v", tag.Comments[1])
	}

	chunks := tag.Chunks()
	if len(chunks) != 1 || chunks[0].ID != ChunkComment {
		t.Fatalf("expected a single COMT chunk, got %#v", chunks)
	}

	var again Tag
	again.Apply(ChunkComment, chunks[0].Value)
	if len(again.Comments) != 2 || again.Comments[1].Text != "odd" {
		t.Fatalf("round trip through Chunks lost data: %#v", again.Comments)
	}
}

func TestApplyTrimsTextChunksButNotComments(t *testing.T) {
	tag := &Tag{}
	tag.Apply(ChunkName, "Foo\x00")
	if tag.Name != "Foo" {
		t.Fatalf("expected trailing NUL trimmed, got %q", tag.Name)
	}

	tag.Apply(ChunkComment, encodeComments([]Comment{{Text: "x"}}))
	if len(tag.Comments) != 1 || tag.Comments[0].Text != "x" {
		t.Fatalf("unexpected comment after mixed Apply calls: %#v", tag.Comments)
	}
}
