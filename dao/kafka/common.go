package kafka

import (
	"eum/logger"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

const (
	TypeWebLog = iota + 1
)

var TopicWebLog = "eum-weblog"

var (
	PartitionNumOfWebLog      = 3
	ReplicationFactorOfWebLog = 1
)

var KafkaProducerRetryTime = 3 // 发送失败，重试次数

type Message struct {
	Type int8 `json:"type"`
	Data any  `json:"data"`
}

var addr []string

var webLogWriter *kafka.Writer

func InitKafka() {
	initConfig()

	webLogWriter = &kafka.Writer{
		Addr:                   kafka.TCP(addr...),
		Topic:                  TopicWebLog,
		Balancer:               &kafka.Hash{}, // 同一个 session 的事件进入同一个 partition
		AllowAutoTopicCreation: true,
	}

	if err := createTopic(TopicWebLog, PartitionNumOfWebLog, ReplicationFactorOfWebLog); err != nil {
		logger.Warnf("kafka:InitKafka: create topic %s: %v", TopicWebLog, err)
	}
}

func Close() error {
	if webLogWriter == nil {
		return nil
	}
	return webLogWriter.Close()
}

func initConfig() {
	addr = viper.GetStringSlice("kafka.brokers")
	if topic := viper.GetString("kafka.topic_weblog"); topic != "" {
		TopicWebLog = topic
	}
	if n := viper.GetInt("kafka.partition.weblog"); n > 0 {
		PartitionNumOfWebLog = n
	}
	if n := viper.GetInt("kafka.replication_factor.weblog"); n > 0 {
		ReplicationFactorOfWebLog = n
	}
	if n := viper.GetInt("kafka.producer_retry_time"); n > 0 {
		KafkaProducerRetryTime = n
	}
}

func createTopic(topicName string, partitionNum, replicationFactor int) error {
	if len(addr) == 0 {
		return errors.New("kafka address length should not be zero")
	}
	conn, err := kafka.Dial("tcp", addr[0])
	if err != nil {
		return errors.Wrap(err, "kafka:createTopic: Dial")
	}
	defer conn.Close()

	// 必须在 controller 节点上创建 topic
	controller, err := conn.Controller()
	if err != nil {
		return errors.Wrap(err, "kafka:createTopic: Controller")
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return errors.Wrap(err, "kafka:createTopic: Dial controller")
	}
	defer controllerConn.Close()

	return errors.Wrap(controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     partitionNum,
		ReplicationFactor: replicationFactor,
	}), "kafka:createTopic: CreateTopics")
}
