package notifications

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderEmailBody(t *testing.T) {
	body, err := RenderEmailBody("", "Line one\r\nLine <two> & \"three\"", fixedNow)
	require.NoError(t, err)

	require.Contains(t, body, "Notification from StudentMS")
	require.Contains(t, body, "Line one<br>Line &lt;two&gt; &amp; &#34;three&#34;")
	require.Contains(t, body, "2026 StudentMS")
	require.NotContains(t, body, "<two>")
}

func TestRenderEmailBodyCustomSender(t *testing.T) {
	body, err := RenderEmailBody("Campus Office", "hello", fixedNow)
	require.NoError(t, err)
	require.Contains(t, body, "Notification from Campus Office")
}
