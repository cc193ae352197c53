package diag

// Location points at the subject of a diagnostic: the manifest it came from
// and the qualified symbol being processed. Either part may be empty.
type Location struct {
	File    string
	Subject string
}

func (l Location) IsZero() bool { return l.File == "" && l.Subject == "" }

func (l Location) String() string {
	switch {
	case l.File == "":
		return l.Subject
	case l.Subject == "":
		return l.File
	}
	return l.File + ":" + l.Subject
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}
