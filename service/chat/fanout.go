package chat

import "hash/crc32"

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout spreads group deliveries over a fixed worker pool. Jobs for the
// same group key always land on the same worker, so one sender's messages
// reach a receiver's connections in publish order.
type Fanout struct {
	queues []chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 1
	}
	f := &Fanout{queues: make([]chan fanoutJob, workers)}
	for i := range f.queues {
		jobs := make(chan fanoutJob, queue)
		f.queues[i] = jobs
		go func() {
			for job := range jobs {
				for _, c := range job.conns {
					// Slow client: frame is dropped, connection stays up.
					c.Enqueue(job.payload)
				}
			}
		}()
	}
	return f
}

// Broadcast enqueues one payload for every listed connection.
func (f *Fanout) Broadcast(group string, conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	i := crc32.ChecksumIEEE([]byte(group)) % uint32(len(f.queues))
	f.queues[i] <- fanoutJob{conns: conns, payload: payload}
}
