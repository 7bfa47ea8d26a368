package app

import (
	"reflect"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestParseBrokers(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"":                             {},
		"localhost:9092":               {"localhost:9092"},
		"kafka-1:9092,kafka-2:9092":    {"kafka-1:9092", "kafka-2:9092"},
		" kafka-1:9092 , kafka-2:9092": {"kafka-1:9092", "kafka-2:9092"},
		"kafka-1:9092,,":               {"kafka-1:9092"},
	}
	for input, want := range cases {
		got := parseBrokers(input)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("parseBrokers(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestInitKafkaProducer_NoBrokers(t *testing.T) {
	t.Parallel()

	producer, err := initKafkaProducer("", log.New().WithField("component", "test"))
	if err != nil {
		t.Fatalf("expected no error without brokers, got %v", err)
	}
	if producer != nil {
		t.Fatal("expected nil producer without brokers")
	}

	// Одни разделители — то же, что пустая строка.
	producer, err = initKafkaProducer(" , ,", log.New().WithField("component", "test"))
	if err != nil || producer != nil {
		t.Fatalf("expected nil producer for blank broker list, got %v, %v", producer, err)
	}
}
