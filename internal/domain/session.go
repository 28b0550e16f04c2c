package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IngestStatus marks whether all rep documents of a session were written.
// Sessions left "pending" by a crashed ingestion are rolled back by the
// reconcile pass.
type IngestStatus string

const (
	IngestPending  IngestStatus = "pending"
	IngestComplete IngestStatus = "complete"
)

// WorkoutSession is one completed workout attempt by an athlete.
type WorkoutSession struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteName       string             `bson:"athleteName" json:"athleteName"`
	AthleteID         string             `bson:"athleteId,omitempty" json:"athleteId,omitempty"`
	AthleteProfilePic string             `bson:"athleteProfilePic,omitempty" json:"athleteProfilePic,omitempty"`
	ActivityName      string             `bson:"activityName" json:"activityName"`
	TotalReps         int                `bson:"totalReps" json:"totalReps"`
	CorrectReps       int                `bson:"correctReps" json:"correctReps"`
	IncorrectReps     int                `bson:"incorrectReps" json:"incorrectReps"`
	Duration          int                `bson:"duration" json:"duration"` // seconds
	Accuracy          int                `bson:"accuracy" json:"accuracy"` // 0-100
	FormScore         string             `bson:"formScore,omitempty" json:"formScore,omitempty"`
	Timestamp         time.Time          `bson:"timestamp" json:"timestamp"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	PDFURL            string             `bson:"pdfUrl,omitempty" json:"pdfUrl,omitempty"`
	VideoURL          string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	IngestStatus      IngestStatus       `bson:"ingestStatus,omitempty" json:"-"`
}

// AthleteSummary is one row of the athlete roster.
type AthleteSummary struct {
	AthleteName   string    `bson:"_id" json:"athleteName"`
	TotalWorkouts int       `bson:"totalWorkouts" json:"totalWorkouts"`
	LastWorkout   time.Time `bson:"lastWorkout" json:"lastWorkout"`
	ProfilePic    string    `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}

// UserStats is the derived performance summary shown on a profile.
type UserStats struct {
	TotalWorkouts    int `json:"totalWorkouts"`
	BestReps         int `json:"bestReps"`
	AvgAccuracy      int `json:"avgAccuracy"`
	ExcellentFormPct int `json:"excellentFormPct"`
	Consistency      int `json:"consistency"`
}
