package workflow

// Navigator moves the browser to another route
type Navigator interface {
	Navigate(route string) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string) error

func (f NavigatorFunc) Navigate(route string) error {
	return f(route)
}
