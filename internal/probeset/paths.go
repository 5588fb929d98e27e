package probeset

// HiddenPaths is the builtin list the recon scanner probes for
// reachable admin panels, VCS leftovers, and config leaks.
var HiddenPaths = []string{
	"admin",
	"dashboard",
	"login",
	"wp-admin",
	"phpmyadmin",
	".git",
	".env",
	"backup",
	"api",
	"config",
	"uploads",
	"administrator",
	"mysql",
	"test",
	"hidden",
	"cgi-bin",
	"phpinfo.php",
	"robots.txt",
	".htaccess",
	"backup.zip",
	"wp-login.php",
	"administrator/index.php",
	"server-status",
}

// InterestingHeaders are the response headers the recon scanner calls
// out by name when present.
var InterestingHeaders = []string{
	"X-Powered-By",
	"X-Frame-Options",
	"Content-Type",
	"Content-Length",
	"Cache-Control",
	"X-Content-Type-Options",
}
