package jobqueue

import (
	"bibgraph-backend/logging"
	"bibgraph-backend/utils"
	"encoding/json"
	"errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"net"
	"net/url"
	"sync"
)

var (
	ErrClosed        = errors.New("broker has been closed")
	ErrQueueNotFound = errors.New("queue not found in rabbit mq")
)

type MQConnectionConfig struct {
	// RabbitMQ分配的用户名称
	User string
	// RabbitMQ用户的密码
	Pwd string
	// RabbitMQ Broker 的ip地址
	Host string
	// RabbitMQ Broker 监听的端口
	Port string
}

func (c *MQConnectionConfig) ToURL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Pwd),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/",
	}
	return u.String()
}

func GenerateTestMQConnectionConfig() MQConnectionConfig {
	return MQConnectionConfig{
		User: "guest",
		Pwd:  "guest",
		Host: "localhost",
		Port: "5672",
	}
}

// Handler 处理一条消息的内容，返回 nil 时消息被确认，否则被丢弃且不再投递。
type Handler func(body []byte) error

type listener struct {
	ch   *amqp.Channel
	stop chan struct{}
}

/*
broker 持有一个 RabbitMQ 连接。

队列是持久化的，消息以 Persistent 方式投递。消费端手动确认：Handler 成功后 Ack，
失败后 Nack 且不重新入队，因为流水线写图不是幂等的，重复执行会产生重复的节点和边。
进程在处理途中退出时，未确认的消息会被 broker 重新投递。
*/
type broker struct {
	logger *logrus.Logger
	conn   *amqp.Connection
	queues map[string]amqp.Queue

	lock      sync.Mutex
	closed    bool
	publishCh *amqp.Channel
	listeners map[string]*listener
}

func newBroker(rawURL string, queueNames []string) (*broker, error) {
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, utils.WrapError(err, "create connection fail")
	}

	queues, err := declareQueues(conn, queueNames)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &broker{
		logger:    logging.NewLogger(),
		conn:      conn,
		queues:    queues,
		listeners: make(map[string]*listener),
	}, nil
}

func declareQueues(conn *amqp.Connection, queueNames []string) (map[string]amqp.Queue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, utils.WrapError(err, "create channel fail")
	}
	defer ch.Close()

	queues := make(map[string]amqp.Queue, len(queueNames))
	for _, name := range queueNames {
		// durable, 不自动删除, 非独占, 等待确认
		q, err := ch.QueueDeclare(name, true, false, false, false, nil)
		if err != nil {
			return nil, utils.WrapErrorf(err, "declare queue [%s] fail", name)
		}
		queues[name] = q
	}
	return queues, nil
}

func (b *broker) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.closed = true

	for name, l := range b.listeners {
		b.logger.Infof("stop listening on queue [%s]", name)
		close(l.stop)
	}
	b.listeners = nil

	if b.publishCh != nil {
		_ = b.publishCh.Close()
		b.publishCh = nil
	}
	return b.conn.Close()
}

// SendObjectByJSON 把 obj 序列化为 JSON 后持久化投递到队列。发布通道出错后会在下一次发布时重建。
func (b *broker) SendObjectByJSON(queueName string, obj any) error {
	queue, ok := b.queues[queueName]
	if !ok {
		return ErrQueueNotFound
	}

	body, err := json.Marshal(obj)
	if err != nil {
		return utils.WrapError(err, "json marshal fail")
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return ErrClosed
	}

	if b.publishCh == nil {
		b.publishCh, err = b.conn.Channel()
		if err != nil {
			b.publishCh = nil
			return utils.WrapError(err, "create channel fail")
		}
	}

	err = b.publishCh.Publish("", queue.Name, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		_ = b.publishCh.Close()
		b.publishCh = nil
		return utils.WrapErrorf(err, "publish to [%s] fail", queue.Name)
	}
	return nil
}

/*
ListenOn 在一个新的 goroutine 中消费队列，每次只取一条消息，handle 按到达顺序串行调用。
同一个队列再次调用时，旧的消费循环被停止，它的通道在循环退出后关闭。
*/
func (b *broker) ListenOn(queueName string, handle Handler) error {
	queue, ok := b.queues[queueName]
	if !ok {
		return ErrQueueNotFound
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return ErrClosed
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return utils.WrapError(err, "create channel fail")
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return utils.WrapError(err, "set prefetch fail")
	}

	// 手动确认, 非独占
	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return utils.WrapError(err, "create delivery-chan fail")
	}

	if old, ok := b.listeners[queueName]; ok {
		close(old.stop)
	}
	l := &listener{ch: ch, stop: make(chan struct{})}
	b.listeners[queueName] = l

	go func() {
		defer l.ch.Close()
		consume(b.logger, queueName, deliveries, l.stop, handle)
	}()

	return nil
}

// consume 在 deliveries 关闭或 stop 被关闭时返回，正在处理的消息总会被确认或丢弃。
func consume(logger *logrus.Logger, queueName string, deliveries <-chan amqp.Delivery, stop <-chan struct{}, handle Handler) {
	for {
		select {
		case d, alive := <-deliveries:
			if !alive {
				logger.Infof("exiting loop for listening queue [%s] due to channel closed", queueName)
				return
			}

			logger.Debugf("receive message [%d] from queue [%s]", d.DeliveryTag, queueName)
			settle(logger, queueName, &d, handle(d.Body))
		case <-stop:
			logger.Infof("exiting loop for listening queue [%s] due to stop signal", queueName)
			return
		}
	}
}

func settle(logger *logrus.Logger, queueName string, d *amqp.Delivery, handleErr error) {
	if handleErr == nil {
		if err := d.Ack(false); err != nil {
			logger.WithError(err).Errorf("ack message [%d] of queue [%s] fail", d.DeliveryTag, queueName)
		}
		return
	}

	logger.WithError(handleErr).Errorf("handle message [%d] of queue [%s] fail, dropping it", d.DeliveryTag, queueName)
	if err := d.Nack(false, false); err != nil {
		logger.WithError(err).Errorf("nack message [%d] of queue [%s] fail", d.DeliveryTag, queueName)
	}
}
