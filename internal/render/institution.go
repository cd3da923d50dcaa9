package render

// Institution is the issuer printed on every card.
type Institution struct {
	Name           string
	Address        string
	Subunit        string
	Title          string
	Instructions   []string
	SignatureLabel string
	// Accent colours the title and date labels.
	Accent RGB
}

// RGB is an 8-bit colour.
type RGB struct{ R, G, B int }

// DefaultInstitution is the university library the service was built for.
func DefaultInstitution() Institution {
	return Institution{
		Name:    "Rajiv Gandhi University",
		Address: "Rono-Hills, Doimukh",
		Subunit: "Library",
		Title:   "Membership Smart Card",
		Instructions: []string{
			"- No Library books will be issued without this card",
			"- Check the book before borrowing whether it is mutilated or damaged",
			"- Return books on time",
			"- Library books & membership ID transferable",
			"- Holder of this card will be responsible for the book",
			"- This card must deposited while leaving the university",
			"- Report the loss of borrowing card and books",
			"- If you lose this card please report to - 0360-2277573, 0360-2277094",
		},
		SignatureLabel: "Librarian",
		Accent:         RGB{231, 76, 60},
	}
}
