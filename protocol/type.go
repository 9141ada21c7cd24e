package protocol

// Routes served by every replica. RegisterPath carries external client
// traffic; LocalPath carries replica-to-replica traffic.
const (
	RegisterPath = "/register"
	LocalPath    = "/register/local"
)

// Replica identifies one member of the cluster. Id doubles as the
// timestamp tiebreaker and must be unique within the cluster.
type Replica struct {
	Id  uint64 `json:"id"`
	URL string `json:"url"`
}
