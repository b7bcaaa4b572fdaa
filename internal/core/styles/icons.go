package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconSuccess  = "\u2713"
	IconFailure  = "\u2717"
	IconQuestion = "?"
	IconMagnet   = "\U000F0B47"
	IconSearch   = "\uf002"
	IconQueue    = "\uf0ae"
	IconUpload   = "\uf093"
	IconBell     = "\uf0f3"
	IconRemove   = "\uf1f8"
)
