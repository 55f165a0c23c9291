package ports

import "testing"

func TestInboundContentPrecedence(t *testing.T) {
	cases := []struct {
		name string
		msg  InboundMessage
		want string
	}{
		{"text wins", InboundMessage{Text: "hello", ButtonID: "btn"}, "hello"},
		{"button over list", InboundMessage{ButtonID: "btn", ListID: "row"}, "btn"},
		{"list over quick reply", InboundMessage{ListID: "row", QuickReplyID: "qr"}, "row"},
		{"quick reply last", InboundMessage{QuickReplyID: "qr"}, "qr"},
		{"image only is empty", InboundMessage{ImageID: "media-1"}, ""},
	}
	for _, tc := range cases {
		if got := tc.msg.Content(); got != tc.want {
			t.Errorf("%s: Content() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestInboundHasImage(t *testing.T) {
	if (InboundMessage{}).HasImage() {
		t.Fatal("empty message reports an image")
	}
	if !(InboundMessage{ImageID: "media-1"}).HasImage() {
		t.Fatal("image message not detected")
	}
}
