package mail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildHTMLBody(t *testing.T) {
	body := BuildHTMLBody(BodyInput{
		RecipientName: "Acme Industrial",
		DocumentTitle: "purchase order",
		Number:        "000042",
		SenderName:    "Stockdesk Ltd",
		SenderEmail:   "office@stockdesk.test",
	})
	require.Contains(t, body, "Dear Acme Industrial,")
	require.Contains(t, body, "<strong>000042</strong>")
	require.Contains(t, body, "Stockdesk Ltd")
	require.Contains(t, body, "office@stockdesk.test")
}

func TestBuildHTMLBodyEscapesInput(t *testing.T) {
	body := BuildHTMLBody(BodyInput{
		RecipientName: `Acme <script>"&`,
		DocumentTitle: "purchase order",
		Number:        "000001",
		SenderName:    "Stockdesk",
	})
	require.Contains(t, body, "Acme &lt;script&gt;&quot;&amp;")
	require.NotContains(t, body, "<script>")
}
