package handlers

// HandlerBundle aggregates the HTTP handlers so route registration
// receives a single dependency.
type HandlerBundle struct {
	FeeHandler        *FeeHandler
	StudentHandler    *StudentHandler
	StaffHandler      *StaffHandler
	CourseHandler     *CourseHandler
	AttendanceHandler *AttendanceHandler
	MessageHandler    *MessageHandler
}
