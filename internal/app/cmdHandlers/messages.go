package cmdHandlers

// defaultMessages holds every user-facing reply by key.
var defaultMessages = map[string]string{
	"welcome":           "Welcome %s! You will get regular updates with new links here.",
	"invalid_link":      "Sorry, this link is not valid.",
	"store_error":       "Database error. Please try again later.",
	"cancelled":         "The process has been cancelled.",
	"nothing_to_cancel": "Nothing to cancel.",

	"item_added":        "Item %d added. Send more items or /done to finish.",
	"nothing_collected": "Nothing collected yet. Send some content first.",
	"ask_title":         "%d items collected. Now send a title.",
	"title_text_only":   "Send the title as a text message.",
	"ask_code":          "Title set. Now send a unique code (letters, digits, _ or -).",
	"code_invalid":      "Send a code without spaces: letters, digits, _ or -, up to 64 characters.",
	"code_taken":        "This code is probably already in use. Start over with new content.",
	"save_failed":       "Could not save the bundle. Send the code again or /cancel.",
	"bundle_created":    "Success! Link created:\n%s",

	"ask_broadcast":    "Send the broadcast message. Send /cancel to abort.",
	"broadcast_failed": "Broadcast failed: could not read the user list.",

	"list_header": "Saved bundles:",
	"list_empty":  "No bundles saved yet.",
	"link":        "Link:\n%s",

	"stats": "Statistics\n" +
		"Total users: %d\n" +
		"Joined today: %d\n" +
		"Total opens: %d\n" +
		"Opens today: %d\n" +
		"Unique opens (24h): %d\n" +
		"Total bundles: %d",

	"ask_btn_name":  "Send the new channel button label.\nCurrent: %s",
	"ask_btn_url":   "Send the new channel button URL (http:// or https://).\nCurrent: %s",
	"value_empty":   "Send a non-empty value or /cancel.",
	"url_invalid":   "The URL must start with http:// or https://. Try again or /cancel.",
	"setting_saved": "Saved.",
}
