package workouts

import "time"

// Workout is a single dated exercise session, optionally linked to a
// routine. Created atomically together with its exercise rows.
type Workout struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	RoutineID   *int      `json:"routineId,omitempty"`
	RoutineName *string   `json:"routineName,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Exercise is one logged exercise instance within a workout. The name is
// free text, not normalized against any master exercise list, and the
// weight keeps its raw textual form as submitted.
type Exercise struct {
	ID           int    `json:"id"`
	WorkoutID    int    `json:"workoutId"`
	ExerciseName string `json:"exerciseName"`
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	Weight       string `json:"weight"`
}

// ExerciseEntry is the form level input for one exercise of a new workout.
type ExerciseEntry struct {
	Name   string
	Sets   int
	Reps   int
	Weight string
}

// Summary is one row of the history and dashboard listings.
type Summary struct {
	ID            int       `json:"id"`
	Date          time.Time `json:"date"`
	RoutineName   *string   `json:"routineName,omitempty"`
	ExerciseCount int       `json:"exerciseCount"`
}
