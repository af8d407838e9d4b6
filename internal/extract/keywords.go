package extract

// companyTickerMap maps lowercase company references to tickers.
// Used when the LLM is unavailable or produces nothing. Keys are
// matched as substrings against lowercased text, so indirect
// references like "aws" still resolve.
var companyTickerMap = map[string]string{
	// Tech giants
	"apple":                 "AAPL",
	"apple inc":             "AAPL",
	"apple inc.":            "AAPL",
	"microsoft":             "MSFT",
	"microsoft corporation": "MSFT",
	"google":                "GOOGL",
	"alphabet":              "GOOGL",
	"alphabet inc":          "GOOGL",
	"amazon":                "AMZN",
	"amazon.com":            "AMZN",
	"aws":                   "AMZN",
	"meta":                  "META",
	"facebook":              "META",
	"meta platforms":        "META",
	"nvidia":                "NVDA",
	"nvidia corporation":    "NVDA",

	// Auto
	"tesla":          "TSLA",
	"tesla inc":      "TSLA",
	"general motors": "GM",
	"gm":             "GM",
	"ford":           "F",
	"ford motor":     "F",

	// Finance
	"jpmorgan":        "JPM",
	"jp morgan":       "JPM",
	"jp morgan chase": "JPM",
	"goldman sachs":   "GS",
	"bank of america": "BAC",
	"bofa":            "BAC",

	// Retail
	"walmart": "WMT",
	"costco":  "COST",
	"target":  "TGT",

	// Healthcare
	"pfizer":            "PFE",
	"moderna":           "MRNA",
	"johnson & johnson": "JNJ",
	"j&j":               "JNJ",

	// Energy
	"exxon mobil": "XOM",
	"chevron":     "CVX",
}

// bullishKeywords signal positive market sentiment
var bullishKeywords = []string{
	"beat earnings", "upbeat", "surge", "rally", "gain", "strong",
	"upgrade", "bullish", "jump", "soar", "breakthrough", "deal",
	"partnership", "merger", "record", "profit", "outperform",
	"beat", "top analyst", "buy", "outflow reduction",
}

// bearishKeywords signal negative market sentiment
var bearishKeywords = []string{
	"miss earnings", "downgrade", "downbeat", "decline", "loss",
	"weak", "bearish", "crash", "plunge", "sell", "lawsuit",
	"scandal", "recall", "investigation", "warning", "delay",
	"underperform", "cut", "outflow", "regulatory",
}
