package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/config"
	"backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateWorker(c *gin.Context) {
	var worker models.Worker
	if err := c.ShouldBindJSON(&worker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	worker.ID = primitive.NewObjectID()
	worker.Active = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := config.WorkerCollection.InsertOne(ctx, worker); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating worker"})
		return
	}

	c.JSON(http.StatusCreated, worker)
}

func GetWorkers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.WorkerCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching workers"})
		return
	}
	workers := []models.Worker{}
	if err := cursor.All(ctx, &workers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding workers"})
		return
	}

	c.JSON(http.StatusOK, workers)
}

func EditWorker(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid worker id"})
		return
	}

	var input models.UpdateWorker
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if input.Name != "" {
		update["name"] = input.Name
	}
	if input.BasePay != nil {
		update["base_pay"] = *input.BasePay
	}
	if input.Active != nil {
		update["active"] = *input.Active
	}
	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.WorkerCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating worker"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worker not found"})
		return
	}

	var worker models.Worker
	if err := config.WorkerCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&worker); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching updated worker"})
		return
	}

	c.JSON(http.StatusOK, worker)
}

func GetWorkerSettlements(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if id := c.Query("worker_id"); id != "" {
		filter["worker_id"] = id
	}
	cursor, err := config.WorkerSettlementCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"date": -1}).SetLimit(50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching settlements"})
		return
	}
	settlements := []models.WorkerSettlement{}
	if err := cursor.All(ctx, &settlements); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding settlements"})
		return
	}

	c.JSON(http.StatusOK, settlements)
}
