package dispatchers

// explode lives apart from the handlers that call it so panics raised here
// originate outside the handler's source file.
func explode() {
	var m map[string]int
	m["boom"] = 1
}
