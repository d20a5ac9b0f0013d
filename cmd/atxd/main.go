package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/atx.go/pkg/bridge"
	"github.com/robotalks/atx.go/pkg/env"
	fx "github.com/robotalks/atx.go/pkg/framework"
	"github.com/robotalks/atx.go/pkg/gpio"
	"github.com/robotalks/atx.go/pkg/msgs"
	"github.com/robotalks/atx.go/pkg/telemetry"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig().MustLoad()
	backend, err := conf.NewBackend()
	if err != nil {
		log.Fatalln(err)
	}
	conn := conf.MustOpenTransport()
	defer conn.Close()

	table := conf.NewTable()
	b, err := bridge.New(conn, gpio.NewBank(backend), conf.Layout, table)
	if err != nil {
		log.Fatalln(err)
	}

	loop := fx.NewLoop().Add(b)
	if conf.MQTTBrokerURL != "" {
		meta := msgs.DeviceMeta{
			ID:          conf.ID,
			Description: conf.Description,
			Transport:   conf.TransportURL,
		}
		for _, action := range table.Actions() {
			meta.Commands = append(meta.Commands, action.Code.String())
		}
		t, err := telemetry.New(conf.MQTTBrokerURL, meta)
		if err != nil {
			log.Fatalln(err)
		}
		b.Actuator.Observer = t
		loop.Add(t)
	}

	glog.Infof("bridge %s on %s, gpio %s", conf.ID, conf.TransportURL, conf.GPIO)
	loop.RunOrFail()
}
