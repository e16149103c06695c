package chat

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout pushes a payload onto many client send queues from a small
// worker pool, so one large broadcast never blocks a read loop.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 1
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					select {
					case c.Send <- job.payload:
					default:
						// slow client: drop its copy, delivery is best-effort
					}
				}
			}
		}()
	}
	return f
}

func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}

// Close stops the workers once queued jobs drain.
func (f *Fanout) Close() {
	close(f.jobs)
}
