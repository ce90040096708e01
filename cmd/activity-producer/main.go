package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// ActivityEvent mirrors the consumer's wire format
type ActivityEvent struct {
	EventID    string            `json:"event_id"`
	UserID     string            `json:"user_id"`
	Kind       string            `json:"kind"`
	BasePoints int               `json:"base_points"`
	Metadata   *ActivityMetadata `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ActivityMetadata carries the optional bonus flags
type ActivityMetadata struct {
	PerfectScore         bool    `json:"perfect_score,omitempty"`
	IsFirstLesson        bool    `json:"is_first_lesson,omitempty"`
	IsWeekend            bool    `json:"is_weekend,omitempty"`
	IsLateNight          bool    `json:"is_late_night,omitempty"`
	DifficultyMultiplier float64 `json:"difficulty_multiplier,omitempty"`
}

var userPrefixes = []string{
	"Curious", "Eager", "Focused", "Bright", "Steady", "Quick", "Patient", "Bold", "Keen", "Sharp",
	"Clever", "Diligent", "Earnest", "Astute", "Avid", "Devoted", "Driven", "Intent", "Lively", "Nimble",
}

// activityKinds and their relative weights, roughly matching real platform
// traffic: lessons dominate, module completions are rare
var activityKinds = []struct {
	kind   string
	weight int
}{
	{"lesson_completion", 50},
	{"assessment_passed", 15},
	{"community_post", 15},
	{"daily_challenge", 12},
	{"module_completion", 8},
}

func getUserID(idx int) string {
	prefixIdx := idx % len(userPrefixes)
	suffix := idx/len(userPrefixes) + 1
	return fmt.Sprintf("%s%d", userPrefixes[prefixIdx], suffix)
}

func pickKind() string {
	total := 0
	for _, k := range activityKinds {
		total += k.weight
	}
	n := rand.Intn(total)
	for _, k := range activityKinds {
		if n < k.weight {
			return k.kind
		}
		n -= k.weight
	}
	return activityKinds[0].kind
}

func makeEvent(userIdx int) ActivityEvent {
	now := time.Now()
	md := &ActivityMetadata{
		IsWeekend:   now.Weekday() == time.Saturday || now.Weekday() == time.Sunday,
		IsLateNight: now.Hour() >= 22 || now.Hour() < 5,
	}
	kind := pickKind()
	if kind == "assessment_passed" && rand.Intn(100) < 20 {
		md.PerfectScore = true
	}
	if rand.Intn(100) < 30 {
		md.DifficultyMultiplier = []float64{1.0, 1.1, 1.2, 1.3, 1.5}[rand.Intn(5)]
	}

	return ActivityEvent{
		EventID:    uuid.New().String(),
		UserID:     getUserID(userIdx),
		Kind:       kind,
		BasePoints: -1, // let the server apply the standard award
		Metadata:   md,
		Timestamp:  now,
	}
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "learning-activities", "Kafka topic")
	totalUsers := flag.Int("users", 500, "Number of simulated learners")
	eventsPerSecond := flag.Int("rate", 50, "Events per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  🚀 Learning Activity Producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:       %s\n", *brokers)
	fmt.Printf("  Topic:         %s\n", *topic)
	fmt.Printf("  Users:         %d\n", *totalUsers)
	fmt.Printf("  Events/sec:    %d\n", *eventsPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Send message helper. Keying by user keeps one learner's events in
	// order on a single partition.
	sendEvent := func(event ActivityEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal event: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(event.UserID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	fmt.Printf("Streaming activity for %d learners (%d events/sec)\n", *totalUsers, *eventsPerSecond)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	interval := time.Second / time.Duration(*eventsPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var sentCount int64

	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\n\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\n\nDuration reached, shutting down...")
				shutdown()
				return
			}

			// 60% of traffic comes from the most active fifth of learners
			var userIdx int
			active := *totalUsers / 5
			if active < 1 {
				active = 1
			}
			if rand.Intn(100) < 60 {
				userIdx = rand.Intn(active)
			} else {
				userIdx = rand.Intn(*totalUsers)
			}

			sendEvent(makeEvent(userIdx))
			atomic.AddInt64(&sentCount, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Produced: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&sentCount),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
