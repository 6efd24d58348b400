package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileHeaders(t *testing.T) {
	t.Run("Plugin File", func(t *testing.T) {
		src := `<?php
/**
 * Plugin Name: My Plugin
 * Plugin URI:  https://example.com/my-plugin
 * Description: Does things: well.
 * Version:     1.2.0
 * Author:      Jane Doe
 * Text Domain: my-plugin
 *
 * @package MyPlugin
 */
`
		headers := ParseFileHeaders([]byte(src))
		assert.Equal(t, "My Plugin", headers["Plugin Name"])
		assert.Equal(t, "https://example.com/my-plugin", headers["Plugin URI"])
		assert.Equal(t, "Does things: well.", headers["Description"])
		assert.Equal(t, "1.2.0", headers["Version"])
		assert.Equal(t, "my-plugin", headers["Text Domain"])
	})

	t.Run("Theme Stylesheet", func(t *testing.T) {
		src := `/*
Theme Name: Twenty Something
Author: The Team
*/
body { color: red; }
`
		headers := ParseFileHeaders([]byte(src))
		assert.Equal(t, "Twenty Something", headers["Theme Name"])
		assert.Equal(t, "The Team", headers["Author"])
	})

	t.Run("No Comment", func(t *testing.T) {
		assert.Empty(t, ParseFileHeaders([]byte("<?php echo 1;")))
	})
}

func TestHeaderRecords(t *testing.T) {
	headers := map[string]string{
		"Plugin Name": "My Plugin",
		"Description": "Does things.",
		"Version":     "1.0",
	}
	records := HeaderRecords("plugin", headers, "my-plugin.php", "my-plugin")
	require.Len(t, records, 2)
	assert.Equal(t, "My Plugin", records[0].MsgID)
	assert.Equal(t, "Plugin Name of the plugin", records[0].Comment)
	assert.Equal(t, "my-plugin.php", records[0].File)
	assert.Zero(t, records[0].Line)
	assert.Equal(t, "Description of the plugin", records[1].Comment)

	assert.Nil(t, HeaderRecords("block", headers, "x.php", "d"))
}
