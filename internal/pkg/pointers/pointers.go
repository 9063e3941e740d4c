package pointers

func Int(v int) *int          { return &v }
func Uint(v uint) *uint       { return &v }
func String(v string) *string { return &v }
