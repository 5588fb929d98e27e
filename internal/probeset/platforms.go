package probeset

import "strings"

// userPlaceholder marks where the username goes in a platform URL.
const userPlaceholder = "%USER%"

// Platform describes one social platform: a profile URL template and
// the absence markers whose presence in a 200 response means the
// username does not exist there.
type Platform struct {
	Name    string
	URL     string // template containing %USER%
	Markers []string
}

// ProfileURL fills the username into the platform's URL template.
func (p Platform) ProfileURL(username string) string {
	return strings.ReplaceAll(p.URL, userPlaceholder, username)
}

// Platforms is the builtin platform table. Markers are matched
// case-insensitively against the page body, so they are kept in the
// exact casing the platforms ship them with.
var Platforms = []Platform{
	{
		Name:    "Facebook",
		URL:     "https://www.facebook.com/%USER%",
		Markers: []string{"content-login-button", "login_form"},
	},
	{
		Name:    "Instagram",
		URL:     "https://www.instagram.com/%USER%/",
		Markers: []string{"The link you followed may be broken"},
	},
	{
		Name:    "Twitter",
		URL:     "https://twitter.com/%USER%",
		Markers: []string{"This account doesn't exist"},
	},
	{
		Name:    "GitHub",
		URL:     "https://github.com/%USER%",
		Markers: []string{"This is not the web page you are looking for"},
	},
	{
		Name:    "YouTube",
		URL:     "https://www.youtube.com/@%USER%",
		Markers: []string{"This channel doesn't exist"},
	},
	{
		Name:    "Reddit",
		URL:     "https://www.reddit.com/user/%USER%",
		Markers: []string{"Sorry, nobody on Reddit goes by that name"},
	},
	{
		Name:    "Pinterest",
		URL:     "https://www.pinterest.com/%USER%/",
		Markers: []string{"Sorry, we couldn't find"},
	},
	{
		Name:    "TikTok",
		URL:     "https://www.tiktok.com/@%USER%",
		Markers: []string{"Couldn't find this account"},
	},
	{
		Name:    "LinkedIn",
		URL:     "https://www.linkedin.com/in/%USER%",
		Markers: []string{"This page doesn't exist"},
	},
	{
		Name:    "Twitch",
		URL:     "https://www.twitch.tv/%USER%",
		Markers: []string{"the page you are looking for is unavailable"},
	},
	{
		Name:    "Telegram",
		URL:     "https://t.me/%USER%",
		Markers: []string{"If you have Telegram, you can contact"},
	},
	{
		Name:    "VK",
		URL:     "https://vk.com/%USER%",
		Markers: []string{"Error 404"},
	},
	{
		Name:    "Medium",
		URL:     "https://medium.com/@%USER%",
		Markers: []string{"404"},
	},
	{
		Name:    "DeviantArt",
		URL:     "https://%USER%.deviantart.com",
		Markers: []string{"404"},
	},
	{
		Name:    "Spotify",
		URL:     "https://open.spotify.com/user/%USER%",
		Markers: []string{"Page not found"},
	},
}
