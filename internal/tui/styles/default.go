package styles

// NewDefaultTheme creates the dark "mission control" theme.
func NewDefaultTheme() *Theme {
	return &Theme{
		Name:   "default",
		IsDark: true,

		// NASA blues
		Primary:   ParseHex("#5eb5f7"), // Ocean blue
		Secondary: ParseHex("#7ec8e8"), // Sky blue
		Tertiary:  ParseHex("#2b3a4a"), // Deep slate
		Accent:    ParseHex("#fc3d21"), // Insignia red

		BgBase:    ParseHex("#0b1320"),
		BgSubtle:  ParseHex("#131d2c"),
		BgOverlay: ParseHex("#1b2838"),

		FgBase:   ParseHex("#c5d1de"),
		FgMuted:  ParseHex("#7a8b99"),
		FgSubtle: ParseHex("#4d5b66"),

		Border:      ParseHex("#2b3a4a"),
		BorderFocus: ParseHex("#5eb5f7"),

		Success: ParseHex("#7fd88f"),
		Error:   ParseHex("#ef6b73"),
		Warning: ParseHex("#f2c66d"),
		Info:    ParseHex("#5eb5f7"),
	}
}

// NewLightTheme creates a light theme for bright terminals.
func NewLightTheme() *Theme {
	return &Theme{
		Name: "light",

		Primary:   ParseHex("#0b3d91"),
		Secondary: ParseHex("#1c6fb8"),
		Tertiary:  ParseHex("#d5dde6"),
		Accent:    ParseHex("#d62e17"),

		BgBase:    ParseHex("#ffffff"),
		BgSubtle:  ParseHex("#f1f4f8"),
		BgOverlay: ParseHex("#e6ebf1"),

		FgBase:   ParseHex("#1f2a36"),
		FgMuted:  ParseHex("#566573"),
		FgSubtle: ParseHex("#8a98a6"),

		Border:      ParseHex("#c3cdd8"),
		BorderFocus: ParseHex("#0b3d91"),

		Success: ParseHex("#2e7d32"),
		Error:   ParseHex("#c62828"),
		Warning: ParseHex("#b26a00"),
		Info:    ParseHex("#0b3d91"),
	}
}
