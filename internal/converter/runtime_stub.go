//go:build !govips || !cgo

package converter

// Startup ничего не делает: движку на чистом Go инициализация не нужна.
func Startup() error {
	return nil
}

// Shutdown ничего не делает: движку на чистом Go инициализация не нужна.
func Shutdown() {}
