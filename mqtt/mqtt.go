package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config holds MQTT broker settings.
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
	Retain     bool   `yaml:"retain"` // retain the last barcode per target
}

// Handlers holds callback functions for MQTT events.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
	OnInject     func(Inject)
}

// Client publishes scans for one node and accepts injected code streams.
// With no host configured every method is a no-op.
type Client struct {
	client  paho.Client
	topics  Topics
	enabled bool
	retain  bool
	h       Handlers
}

// New creates a new MQTT client. Returns a disabled client if host is empty.
func New(cfg Config, nodeID string, handlers Handlers) (*Client, error) {
	c := &Client{
		topics: NewTopics(nodeID),
		retain: cfg.Retain,
		h:      handlers,
	}

	if cfg.Host == "" {
		log.Println("MQTT disabled (no host configured)")
		return c, nil
	}
	c.enabled = true

	opts := paho.NewClientOptions().
		SetClientID(nodeID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(c.handleConnectionLost).
		SetOnConnectHandler(c.handleConnect)

	if cfg.CACert != "" || cfg.ClientCert != "" {
		if cfg.Port == 0 {
			cfg.Port = 8883
		}
		tlsConfig, err := buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build TLS config: %w", err)
		}
		opts.AddBroker(fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port))
		opts.SetTLSConfig(tlsConfig)
	} else {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
		log.Println("MQTT using non-TLS connection")
	}

	c.client = paho.NewClient(opts)

	paho.ERROR = log.New(os.Stdout, "[MQTT ERROR] ", 0)
	paho.CRITICAL = log.New(os.Stdout, "[MQTT CRIT] ", 0)
	paho.WARN = log.New(os.Stdout, "[MQTT WARN] ", 0)

	return c, nil
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Topics returns the node's topic names.
func (c *Client) Topics() Topics { return c.topics }

// IsEnabled returns whether MQTT is enabled.
func (c *Client) IsEnabled() bool { return c.enabled }

// Connect connects to the broker. If disabled, calls OnConnect immediately.
func (c *Client) Connect() error {
	if !c.enabled {
		// Report success so indicators leave the connection-lost state.
		if c.h.OnConnect != nil {
			c.h.OnConnect()
		}
		return nil
	}

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect: %w", token.Error())
	}
	log.Println("MQTT connected")
	return nil
}

// Disconnect disconnects from the broker. No-op if disabled.
func (c *Client) Disconnect() {
	if !c.enabled || c.client == nil {
		return
	}
	c.publish(c.topics.Status, false, []byte(`{"status":"offline"}`))
	c.client.Disconnect(250)
}

// PublishBarcode publishes an accepted scan.
func (c *Client) PublishBarcode(msg BarcodeMessage) error {
	return c.publishJSON(c.topics.Barcode(msg.Target), c.retain, msg)
}

// PublishData publishes one raw key code.
func (c *Client) PublishData(msg DataMessage) error {
	return c.publishJSON(c.topics.Data, false, msg)
}

// Ping publishes a liveness message.
func (c *Client) Ping() {
	c.publish(c.topics.Status, false, []byte(`{"status":"ok"}`))
}

func (c *Client) publishJSON(topic string, retain bool, v any) error {
	if !c.enabled {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	c.publish(topic, retain, payload)
	return nil
}

func (c *Client) publish(topic string, retain bool, payload []byte) {
	if !c.enabled {
		return
	}
	c.client.Publish(topic, 0, retain, payload)
}

func (c *Client) handleConnect(client paho.Client) {
	log.Println("MQTT connection established")
	token := client.Subscribe(c.topics.Inject, 0, c.handleInject)
	if token.Wait() && token.Error() != nil {
		log.Printf("Subscribe %s: %v", c.topics.Inject, token.Error())
	}
	if c.h.OnConnect != nil {
		c.h.OnConnect()
	}
}

func (c *Client) handleConnectionLost(client paho.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	if c.h.OnDisconnect != nil {
		c.h.OnDisconnect()
	}
}

func (c *Client) handleInject(client paho.Client, msg paho.Message) {
	inj, err := ParseInject(msg.Payload())
	if err != nil {
		log.Printf("Decode inject request: %v", err)
		return
	}
	if c.h.OnInject != nil {
		c.h.OnInject(inj)
	}
}
