package model

// SyncResult is the per-item outcome of a batch sync. It is never stored.
type SyncResult struct {
	EntityName string `json:"entityName"`
	EntityID   string `json:"entityId,omitempty"`
	Success    bool   `json:"success"`
	RemoteID   string `json:"remoteId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SyncStatus reports how many local records are mirrored in the CRM
type SyncStatus struct {
	SyncedCandidates   int `json:"syncedCandidates"`
	UnsyncedCandidates int `json:"unsyncedCandidates"`
	SyncedJobs         int `json:"syncedJobs"`
	UnsyncedJobs       int `json:"unsyncedJobs"`
}

// StageMoveResult is returned after a pipeline move is mirrored to the CRM
type StageMoveResult struct {
	CandidateID string `json:"candidateId"`
	NewStage    string `json:"newStage"`
	NoteCreated bool   `json:"noteCreated"`
	DealUpdated bool   `json:"dealUpdated"`
}
