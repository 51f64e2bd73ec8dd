package validation

// Errors collects field-level validation messages. It renders as the 422
// response body's "errors" object.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) AddError(field string, err error) {
	if err != nil {
		e.Add(field, err.Error())
	}
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// First returns one representative message, used for log lines.
func (e Errors) First() string {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}
