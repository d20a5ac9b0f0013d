package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/atx.go/pkg/msgs"
	"github.com/robotalks/atx.go/pkg/transport/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/atx/"
)

func init() {
	if val := os.Getenv("ATX_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			if len(payload) == 0 {
				log.Printf("%s: gone", topic)
				return
			}
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/events"):
			ev, err := msgs.DecodeActuation(payload)
			if err != nil {
				log.Printf("%s: bad message: %v", topic, err)
				return
			}
			log.Printf("%s: %s %s", topic, ev.Tag, ev.String())
		default:
			log.Printf("%s: %q", topic, payload)
		}
	}))
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
