package mojang

// Profile is one entry of the bulk lookup response
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultBaseURLs are the hosts serving the bulk lookup route
var DefaultBaseURLs = []string{
	"https://api.minecraftservices.com",
	"https://api.mojang.com",
}

// DefaultPaths are equivalent spellings of the bulk lookup route
var DefaultPaths = []string{
	"/profiles/minecraft",
	"/profiles/minecraft/",
	"/profiles/minecraft/.",
	"/profiles/minecraft?foo=bar",
	"/profiles/%2e/minecraft",
	"/%2e/profiles/minecraft",
	"/profiles/./minecraft",
	"/profiles/minecraft?debug=true",
	"/profiles/minecraft?cb=123456",
	"/profiles/minecraft?redirect=/admin",
	"/profiles/minecraft?_=timestamp",
	"//profiles/minecraft",
	`/profiles/minecraft\`,
}

// DefaultUserAgents rotate per request
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_2_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.6167.85 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.6261.112 Mobile Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.2365.80",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.6167.160 Safari/537.36 OPR/108.0.0.0",
}
